package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestRedisStorePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewRedisStore(fake, testTracer, time.Hour)

	scope, err := store.Namespace("browser-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := scope.Set(ctx, HistoryKey, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := fake.data["dashboard:browser-1:search_history"]; !ok {
		t.Fatalf("expected prefixed key, have %v", fake.data)
	}
	if fake.lastTTL != time.Hour {
		t.Fatalf("expected ttl to be passed through, got %v", fake.lastTTL)
	}

	v, ok, err := scope.Get(ctx, HistoryKey)
	if err != nil || !ok || v != "[]" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	scope, _ := NewRedisStore(newFakeRedis(), testTracer, 0).Namespace("browser-1")
	v, ok, err := scope.Get(context.Background(), TokenKey)
	if err != nil || ok || v != "" {
		t.Fatalf("expected clean miss, got %q %v %v", v, ok, err)
	}
}

func TestRedisStoreGetError(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	scope, _ := NewRedisStore(fake, testTracer, 0).Namespace("browser-1")

	if _, _, err := scope.Get(context.Background(), TokenKey); err == nil {
		t.Fatal("expected error to surface")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	scope, _ := NewRedisStore(fake, testTracer, 0).Namespace("browser-1")

	_ = scope.Set(ctx, TokenKey, "tok")
	if err := scope.Delete(ctx, TokenKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.data) != 0 {
		t.Fatalf("expected empty store, got %v", fake.data)
	}
}

func TestRedisStoreLoginNamespaceExpires(t *testing.T) {
	fake := newFakeRedis()
	logins, _ := NewRedisStore(fake, testTracer, 0).Namespace(LoginNamespace)

	if err := logins.Set(context.Background(), PendingLoginKey("s1"), "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fake.lastTTL != PendingLoginTTL {
		t.Fatalf("pending logins should expire after %v, got %v", PendingLoginTTL, fake.lastTTL)
	}
}

type fakeRedis struct {
	data    map[string][]byte
	lastTTL time.Duration
	getErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.lastTTL = expiration
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		b, _ := json.Marshal(v)
		f.data[key] = b
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
