package core

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// DBExecutor is satisfied by *sql.DB and *sql.Tx (and by sqlboiler's boil.ContextExecutor).
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// WrapDBErr wraps err with msg. A connection closed under the repositories
// (sql.ErrConnDone) becomes a shutdown error.
func WrapDBErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrConnDone {
		return NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
