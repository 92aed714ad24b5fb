// Package database centralises sqlx connection helpers for the MySQL
// rate-limit store.  The driver is go-sql-driver/mysql, which also works
// with MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn)                                – conservative pool sizes.
//	OpenWithOptions(ctx, dsn, Options)            – fine-grained control.
//
// Both helpers Ping the database before returning so bootstrap fails fast on
// a bad DSN.  Callers should Close() the returned *sqlx.DB on shutdown.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Options sizes the connection pool.
type Options struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

// DefaultOptions keeps the pool small; the limiter does one read and one
// upsert per accepted submission.
var DefaultOptions = Options{
	MaxOpen:     10,
	MaxIdle:     3,
	MaxLifetime: 30 * time.Minute,
	PingTimeout: 5 * time.Second,
}

// Open returns a *sqlx.DB built with DefaultOptions.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, DefaultOptions)
}

// OpenWithOptions opens and pings a MySQL pool.
func OpenWithOptions(ctx context.Context, dsn string, o Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db.SetMaxOpenConns(o.MaxOpen)
	db.SetMaxIdleConns(o.MaxIdle)
	db.SetConnMaxLifetime(o.MaxLifetime)

	if o.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}
