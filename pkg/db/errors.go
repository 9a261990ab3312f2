package db

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailed   = "UNIQUE constraint failed"
	pgDuplicateKeyPrefix = "duplicate key value"
)

// IsUniqueViolation reports whether err is a unique-constraint rejection from any
// supported driver. When constraintName is provided, the constraint must match too.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && matchesConstraint(pgErr.ConstraintName, constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && matchesConstraint(pqErr.Constraint, constraintName)
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry && matchesConstraint(myErr.Message, constraintName)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// sqlite reports the violated columns rather than the index name
	msg := err.Error()
	if strings.Contains(msg, sqliteUniqueFailed) {
		return true
	}
	return strings.Contains(msg, pgDuplicateKeyPrefix) && matchesConstraint(msg, constraintName)
}

func matchesConstraint(actual, want string) bool {
	return want == "" || strings.Contains(actual, want)
}
