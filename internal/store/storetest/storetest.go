// Package storetest opens isolated in-memory sqlite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/catalog-backend/internal/store"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
)

var seq atomic.Int64

// NewClient returns a migrated sqlite client private to the calling test.
func NewClient(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(db.SQLiteDialector(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	client := db.Wrap(conn, config.DriverSQLite)
	if err := client.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

// New returns a Store over NewClient.
func New(t testing.TB) store.Store {
	t.Helper()
	return store.New(NewClient(t))
}
