package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// Options configures the PostgreSQL connection
type Options struct {
	DSN            string
	MaxConnections int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ConnectRetries int
}

// Open creates a bun database handle, pings it with retries and installs the query logger
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*bun.DB, error) {
	connectorOpts := []pgdriver.Option{pgdriver.WithDSN(opts.DSN)}
	if opts.ReadTimeout > 0 {
		connectorOpts = append(connectorOpts, pgdriver.WithReadTimeout(opts.ReadTimeout))
	}
	if opts.WriteTimeout > 0 {
		connectorOpts = append(connectorOpts, pgdriver.WithWriteTimeout(opts.WriteTimeout))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(connectorOpts...))
	if opts.MaxConnections > 0 {
		sqldb.SetMaxOpenConns(opts.MaxConnections)
		sqldb.SetMaxIdleConns(opts.MaxConnections / 2)
	}
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewQueryLogger(logger))

	attempts := 0
	ping := func() error {
		attempts++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn("Database not reachable, retrying",
			zap.Int("attempt", attempts),
			zap.Duration("retry_in", delay),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(ping, newRetryPolicy(ctx, opts.ConnectRetries), notify); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed after %d attempts: %w", attempts, err)
	}

	return db, nil
}

// newRetryPolicy backs off exponentially from 500ms up to 5s, giving up after retries extra attempts
func newRetryPolicy(ctx context.Context, retries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}
