// Package db owns the relational store handle. The engine is written against
// plain database/sql with `?` placeholders; queries are rebound for postgres
// at execution time, so the same repositories run on postgres (lib/pq) in
// production and on in-memory sqlite (modernc, pure Go) in development and
// tests.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Queryer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run every statement through it so they participate in
// whatever transaction the caller has open.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the sql handle together with its driver name so statements written
// with `?` placeholders can be rebound for postgres.
type DB struct {
	*sql.DB
	driver string
}

// Open initializes a store connection and pings it to validate the DSN.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty %s DSN", driver)
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite has a single writer, and a pooled second connection to an
		// in-memory database would see an empty schema.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &DB{DB: sqlDB, driver: driver}, nil
}

// Driver reports which driver the handle was opened with.
func (d *DB) Driver() string { return d.driver }

// Bind rewrites `?` placeholders to `$1..$n` when the underlying driver is
// postgres. Queries in this codebase never contain a literal question mark.
func (d *DB) Bind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
