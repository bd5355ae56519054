package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"sentiment-dashboard/pkg/logger"
)

var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// Pool is the shared pool behind the postgres storage backend.
var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, dsn)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

func InitPostgres(ctx context.Context, dsn string) error {
	if dsn == "" {
		return ErrNoDatabaseURL
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("connect to postgres: %w", err)
	}
	Pool = pool
	logger.WithComponent("db").Info("connected to postgres")
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
