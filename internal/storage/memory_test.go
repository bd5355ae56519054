package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	a, err := mem.Namespace("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := mem.Namespace("client-b")

	if err := a.Set(ctx, TokenKey, "tok-a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, TokenKey); ok {
		t.Fatal("namespace b should not see namespace a's token")
	}

	v, ok, err := a.Get(ctx, TokenKey)
	if err != nil || !ok || v != "tok-a" {
		t.Fatalf("unexpected get result: %q %v %v", v, ok, err)
	}

	if err := a.Delete(ctx, TokenKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := a.Get(ctx, TokenKey); ok {
		t.Fatal("token should be gone after delete")
	}
}

func TestNamespaceValidation(t *testing.T) {
	mem := NewMemoryStore()
	for _, ns := range []string{"", "has space", "line\nbreak"} {
		if _, err := mem.Namespace(ns); err != ErrInvalidNamespace {
			t.Fatalf("namespace %q: expected ErrInvalidNamespace, got %v", ns, err)
		}
	}
}

func TestMemoryStorePurgeExpiredLogins(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	logins, _ := mem.Namespace(LoginNamespace)
	put := func(state string, expires time.Time) {
		raw, _ := json.Marshal(PendingLogin{Namespace: "ssh:abc", ExpiresAt: expires})
		_ = logins.Set(ctx, PendingLoginKey(state), string(raw))
	}
	put("old", now.Add(-time.Minute))
	put("fresh", now.Add(time.Minute))
	_ = logins.Set(ctx, PendingLoginKey("garbage"), "not json")

	other, _ := mem.Namespace("ssh:abc")
	_ = other.Set(ctx, PendingLoginKey("old"), "not json")

	n, err := mem.PurgeExpiredLogins(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 purged, got %d", n)
	}
	if _, ok, _ := logins.Get(ctx, PendingLoginKey("fresh")); !ok {
		t.Fatal("unexpired login must survive")
	}
	if _, ok, _ := other.Get(ctx, PendingLoginKey("old")); !ok {
		t.Fatal("other namespaces must not be touched")
	}
}
