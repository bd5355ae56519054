package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createClientStorageTable = `
CREATE TABLE IF NOT EXISTS client_storage (
    namespace   TEXT        NOT NULL,
    key         TEXT        NOT NULL,
    value       TEXT        NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (namespace, key)
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps client storage in the client_storage table.
type PostgresStore struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPostgresStore(pool PgxPool, tracer trace.Tracer) *PostgresStore {
	return &PostgresStore{pool: pool, tracer: tracer}
}

// RunMigrations creates the table when cmd/migrate has not been run.
func (p *PostgresStore) RunMigrations(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "postgres-store.run-migrations")
	defer span.End()

	if _, err := p.pool.Exec(ctx, createClientStorageTable); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (p *PostgresStore) Namespace(ns string) (Store, error) {
	if !validNamespace(ns) {
		return nil, ErrInvalidNamespace
	}
	return &postgresScope{parent: p, ns: ns}, nil
}

type postgresScope struct {
	parent *PostgresStore
	ns     string
}

func (s *postgresScope) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.parent.tracer.Start(ctx, "postgres-store.get")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	var value string
	err := s.parent.pool.QueryRow(ctx,
		`SELECT value FROM client_storage WHERE namespace = $1 AND key = $2`,
		s.ns, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}
	return value, true, nil
}

func (s *postgresScope) Set(ctx context.Context, key, value string) error {
	ctx, span := s.parent.tracer.Start(ctx, "postgres-store.set")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	_, err := s.parent.pool.Exec(ctx,
		`INSERT INTO client_storage (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (namespace, key) DO UPDATE SET
		     value = EXCLUDED.value,
		     updated_at = EXCLUDED.updated_at`,
		s.ns, key, value,
	)
	return err
}

func (s *postgresScope) Delete(ctx context.Context, key string) error {
	ctx, span := s.parent.tracer.Start(ctx, "postgres-store.delete")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	_, err := s.parent.pool.Exec(ctx,
		`DELETE FROM client_storage WHERE namespace = $1 AND key = $2`,
		s.ns, key,
	)
	return err
}

// PurgeExpiredLogins drops pending logins older than PendingLoginTTL. Rows
// are written once, so updated_at is their creation time.
func (p *PostgresStore) PurgeExpiredLogins(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := p.tracer.Start(ctx, "postgres-store.purge-expired-logins")
	defer span.End()

	tag, err := p.pool.Exec(ctx,
		`DELETE FROM client_storage WHERE namespace = $1 AND updated_at < $2`,
		LoginNamespace, now.Add(-PendingLoginTTL),
	)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
