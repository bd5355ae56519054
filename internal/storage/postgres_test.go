package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestPostgresStoreGet(t *testing.T) {
	pool := &stubPool{row: stubRow{value: "tok"}}
	scope, _ := NewPostgresStore(pool, testTracer).Namespace("ssh:abc")

	v, ok, err := scope.Get(context.Background(), TokenKey)
	if err != nil || !ok || v != "tok" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}
	if pool.lastArgs[0] != "ssh:abc" || pool.lastArgs[1] != TokenKey {
		t.Fatalf("unexpected query args: %v", pool.lastArgs)
	}
}

func TestPostgresStoreGetNoRows(t *testing.T) {
	pool := &stubPool{row: stubRow{err: pgx.ErrNoRows}}
	scope, _ := NewPostgresStore(pool, testTracer).Namespace("ssh:abc")

	_, ok, err := scope.Get(context.Background(), TokenKey)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestPostgresStoreGetError(t *testing.T) {
	pool := &stubPool{row: stubRow{err: errors.New("conn reset")}}
	scope, _ := NewPostgresStore(pool, testTracer).Namespace("ssh:abc")

	if _, _, err := scope.Get(context.Background(), TokenKey); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	pool := &stubPool{}
	scope, _ := NewPostgresStore(pool, testTracer).Namespace("ssh:abc")

	if err := scope.Set(context.Background(), HistoryKey, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(pool.lastSQL, "ON CONFLICT (namespace, key)") {
		t.Fatalf("expected upsert, got %s", pool.lastSQL)
	}
	if len(pool.lastArgs) != 3 || pool.lastArgs[2] != "[]" {
		t.Fatalf("unexpected args: %v", pool.lastArgs)
	}
}

func TestPostgresStoreDeleteAndMigrations(t *testing.T) {
	pool := &stubPool{}
	store := NewPostgresStore(pool, testTracer)

	if err := store.RunMigrations(context.Background()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if !strings.Contains(pool.lastSQL, "CREATE TABLE IF NOT EXISTS client_storage") {
		t.Fatalf("unexpected migration sql: %s", pool.lastSQL)
	}

	scope, _ := store.Namespace("ssh:abc")
	if err := scope.Delete(context.Background(), TokenKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(pool.lastSQL), "DELETE FROM client_storage") {
		t.Fatalf("unexpected delete sql: %s", pool.lastSQL)
	}
}

func TestPostgresStoreRunMigrationsInsideSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	pool := &stubPool{}

	if err := NewPostgresStore(pool, tp.Tracer("test")).RunMigrations(context.Background()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if !trace.SpanContextFromContext(pool.lastCtx).IsValid() {
		t.Fatal("migration statement should run inside the run-migrations span")
	}
}

func TestPostgresStorePurgeExpiredLogins(t *testing.T) {
	pool := &stubPool{tag: pgconn.NewCommandTag("DELETE 2")}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	n, err := NewPostgresStore(pool, testTracer).PurgeExpiredLogins(context.Background(), now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 purged rows, got %d", n)
	}
	if pool.lastArgs[0] != LoginNamespace {
		t.Fatalf("purge must stay in the login namespace, got %v", pool.lastArgs[0])
	}
	if cutoff := pool.lastArgs[1].(time.Time); !cutoff.Equal(now.Add(-PendingLoginTTL)) {
		t.Fatalf("unexpected cutoff %v", cutoff)
	}
}

type stubPool struct {
	tag      pgconn.CommandTag
	row      stubRow
	execErr  error
	lastSQL  string
	lastArgs []any
	lastCtx  context.Context
}

func (s *stubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.lastCtx = ctx
	s.lastSQL = sql
	s.lastArgs = args
	return s.tag, s.execErr
}

func (s *stubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.lastSQL = sql
	s.lastArgs = args
	return s.row
}

type stubRow struct {
	value string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}
