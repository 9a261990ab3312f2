package db

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the database/sql driver behind sqlite connections. It
// replaces lower() with a Unicode-aware version; the builtin only folds ASCII,
// so case-insensitive search would miss "É" for "é".
const SQLiteDriverName = "sqlite3_catalog"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// SQLiteDialector opens dsn through SQLiteDriverName.
func SQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}
