package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source resolves the migration set. An empty dir selects the files compiled
// into the binary, so the api can migrate without the source tree.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "migrations")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations dir %q is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	fsys, err := Source(dir)
	if err != nil {
		return nil, err
	}
	// SQL migrations target postgres; mysql and sqlite deployments use gorm AutoMigrate.
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down or status and writes one line per migration to out.
func Run(ctx context.Context, db *sql.DB, dir string, command string, out io.Writer) error {
	provider, err := newProvider(db, dir)
	if err != nil {
		return err
	}
	if out == nil {
		out = io.Discard
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		printResults(out, results...)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			printResults(out, result)
		}
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, st := range statuses {
			applied := "pending"
			if st.State == goose.StateApplied {
				applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-20s %s\n", applied, st.Source.Path)
		}
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string, out io.Writer) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, dir)
	if err != nil {
		return err
	}
	if out == nil {
		out = io.Discard
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	printResults(out, results...)
	if err != nil {
		return fmt.Errorf("migrate to %d: %w", target, err)
	}
	return nil
}

func printResults(out io.Writer, results ...*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fmt.Fprintf(out, "%-4s %s (%s)\n", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond))
	}
}
