package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lujin3/go-connpass/connpass"
)

var (
	_ connpass.KVStore   = (*Store)(nil)
	_ connpass.KVClearer = (*Store)(nil)
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("first"), 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("second"), 0); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected value to be found")
	}
	if !bytes.Equal(got, []byte("second")) {
		t.Fatalf("value = %q, want %q", got, "second")
	}

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("get missing = %v, %v; want miss", ok, err)
	}
}

func TestExpiredEntriesAreMisses(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Put(ctx, "short", []byte("a"), time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "forever", []byte("b"), 0); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(time.Second)

	if _, ok, err := store.Get(ctx, "short"); err != nil || ok {
		t.Fatalf("get expired = %v, %v; want miss", ok, err)
	}
	if _, ok, err := store.Get(ctx, "forever"); err != nil || !ok {
		t.Fatalf("get forever = %v, %v; want hit", ok, err)
	}
}

func TestPurgeRemovesOnlyExpired(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for key, ttl := range map[string]time.Duration{"a": time.Minute, "b": time.Minute, "c": 0, "d": time.Hour} {
		if err := store.Put(ctx, key, []byte(key), ttl); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	now = now.Add(time.Minute)

	n, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged = %d, want 2", n)
	}
}

func TestClearPrefix(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	for _, key := range []string{"presentation:1", "presentation:22", "other:1"} {
		if err := store.Put(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	if err := store.Clear(ctx, "presentation:"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	for key, want := range map[string]bool{"presentation:1": false, "presentation:22": false, "other:1": true} {
		_, ok, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if ok != want {
			t.Errorf("%s present = %v, want %v", key, ok, want)
		}
	}
}

func TestStoreBacksPresentationCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	want := &connpass.PresentationsResponse{
		Returned:      1,
		Presentations: []connpass.Presentation{{ID: 9, Title: "Generics", SpeakerName: "gopher", Order: 1}},
	}
	if err := connpass.NewKVCache(store, time.Hour, nil).Set(ctx, 364, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTempStoreAt(t, path)
	got, ok, err := connpass.NewKVCache(reopened, time.Hour, nil).Get(ctx, 364)
	if err != nil || !ok {
		t.Fatalf("get = %v, %v; want hit", ok, err)
	}
	if got.Presentations[0].Title != "Generics" {
		t.Fatalf("title = %q, want %q", got.Presentations[0].Title, "Generics")
	}
}

func openTempStoreAt(t *testing.T, path string) *Store {
	t.Helper()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
