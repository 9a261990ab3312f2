package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp             = "-- +goose Up"
	annotationDown           = "-- +goose Down"
	annotationStatementBegin = "-- +goose StatementBegin"
	annotationStatementEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks file naming, version uniqueness and goose annotations.
// An empty dir validates the embedded set.
func ValidateDir(dir string) error {
	fsys, err := Source(dir)
	if err != nil {
		return err
	}
	return validateFS(fsys)
}

func validateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := versions[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations found")
	}
	return nil
}

func checkAnnotations(txt string) error {
	up := strings.Index(txt, annotationUp)
	down := strings.Index(txt, annotationDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", annotationUp)
	case down < 0:
		return fmt.Errorf("missing %q", annotationDown)
	case down < up:
		return fmt.Errorf("%q must come before %q", annotationUp, annotationDown)
	}
	if strings.Count(txt, annotationStatementBegin) != strings.Count(txt, annotationStatementEnd) {
		return fmt.Errorf("unbalanced StatementBegin/StatementEnd")
	}
	return nil
}
