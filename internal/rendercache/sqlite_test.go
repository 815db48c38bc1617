package rendercache

import (
	"bytes"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheGetAndPut(t *testing.T) {
	store := newTestStore(t)
	ctx := testContext(t)

	key := Key([]byte("# hi\n"), "d64")
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	html := []byte("<h1>hi</h1>")
	if err := store.Put(ctx, key, html); err != nil {
		t.Fatalf("failed to put render: %v", err)
	}

	got, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get render: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after put")
	}
	if !bytes.Equal(got, html) {
		t.Fatalf("expected %q, got %q", html, got)
	}
}

func TestCachePutReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := testContext(t)

	key := Key([]byte("src"), "v")
	if err := store.Put(ctx, key, []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, key, []byte("second")); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != "second" {
		t.Fatalf("expected replacement, got %q", got)
	}
}

func TestCachePrune(t *testing.T) {
	store := newTestStore(t)
	ctx := testContext(t)

	if err := store.Put(ctx, "old", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Nothing is older than an hour yet.
	n, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no pruned rows, got %d", n)
	}

	// With zero retention everything just written is expired.
	time.Sleep(1100 * time.Millisecond)
	n, err = store.Prune(ctx, time.Second)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one pruned row, got %d", n)
	}

	if _, ok, _ := store.Get(ctx, "old"); ok {
		t.Fatal("expected entry to be gone after prune")
	}
}

func TestCachePing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(testContext(t)); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestKeyVariantsDoNotCollide(t *testing.T) {
	src := []byte("same source")
	if Key(src, "a") == Key(src, "b") {
		t.Fatal("different variants must produce different keys")
	}
	if Key(src, "a") != Key(src, "a") {
		t.Fatal("key derivation must be deterministic")
	}
}
