package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage catalog database migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), "up", func(ctx context.Context, sqlDB *sql.DB) error {
			return migrate.Run(ctx, sqlDB, migrationsDir, "up", os.Stdout)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), "down", func(ctx context.Context, sqlDB *sql.DB) error {
			return migrate.Run(ctx, sqlDB, migrationsDir, "down", os.Stdout)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), "status", func(ctx context.Context, sqlDB *sql.DB) error {
			return migrate.Run(ctx, sqlDB, migrationsDir, "status", os.Stdout)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version <YYYYMMDDHHMMSS>",
	Short: "Migrate up or down to the given version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), "version", func(ctx context.Context, sqlDB *sql.DB) error {
			return migrate.MigrateToVersion(ctx, sqlDB, migrationsDir, args[0], os.Stdout)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new SQL migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := migrate.CreateSQLMigration(migrationsDir, args[0])
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check migration files for goose annotations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrate.ValidateDir(migrationsDir); err != nil {
			return fmt.Errorf("migration validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", migrate.DefaultDir, "migrations directory; empty uses the set built into the binary")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd, versionCmd, createCmd, validateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDatabase loads config, opens the postgres connection and hands the raw
// *sql.DB to fn. Other drivers are migrated through gorm at api startup.
func withDatabase(ctx context.Context, command string, fn func(context.Context, *sql.DB) error) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("sql migrations only support %q, got %q", config.DriverPostgres, cfg.DB.Driver)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"cmd": command,
		"dir": migrationsDir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}
