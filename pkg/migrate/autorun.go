package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// Bootstrap prepares the schema at startup according to the feature flags:
// goose up for postgres in dev, gorm AutoMigrate for the other drivers.
func Bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})

	switch client.Driver() {
	case config.DriverSQLite:
		if !cfg.FeatureFlags.AutoMigrateSQLite {
			return nil
		}
		logg.Info(ctx, "auto-migrating sqlite schema")
		return client.AutoMigrate(ctx)

	case config.DriverMySQL:
		if !cfg.FeatureFlags.AutoMigrate {
			return nil
		}
		logg.Info(ctx, "auto-migrating mysql schema")
		return client.AutoMigrate(ctx)
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running embedded goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, "", "up", nil); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
