package errors

import (
	"errors"
	"fmt"
	"strconv"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logs. The DB fields are
// filled from whichever driver error sits in the chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	DBDriver     string `json:"db_driver,omitempty"`
	DBCode       string `json:"db_code,omitempty"`
	DBConstraint string `json:"db_constraint,omitempty"`
	DBTable      string `json:"db_table,omitempty"`
	DBDetail     string `json:"db_detail,omitempty"`
	DBMessage    string `json:"db_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.DBDriver = "pgx"
		d.DBCode = pgxErr.Code
		d.DBConstraint = pgxErr.ConstraintName
		d.DBTable = pgxErr.TableName
		d.DBDetail = pgxErr.Detail
		d.DBMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.DBDriver = "pq"
		d.DBCode = string(pqErr.Code)
		d.DBConstraint = pqErr.Constraint
		d.DBTable = pqErr.Table
		d.DBDetail = pqErr.Detail
		d.DBMessage = pqErr.Message
		return d
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		d.DBDriver = "mysql"
		d.DBCode = strconv.Itoa(int(myErr.Number))
		d.DBMessage = myErr.Message
	}
	return d
}
