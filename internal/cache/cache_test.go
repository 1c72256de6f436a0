package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "resolve.db"), filepath.Join(dir, "resolve.lock"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheSetGet(t *testing.T) {
	store := newTestStore(t)

	if err := store.Set("ens:foo.eth", []byte("0xabc"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	res, err := store.Get("ens:foo.eth")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !res.Hit || string(res.Value) != "0xabc" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCacheMiss(t *testing.T) {
	store := newTestStore(t)
	res, err := store.Get("never-set")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.Hit {
		t.Fatal("unexpected hit")
	}
}

func TestCacheExpiry(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("short", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	res, err := store.Get("short")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.Hit {
		t.Fatal("expired entry should miss")
	}
}

func TestCacheOverwrite(t *testing.T) {
	store := newTestStore(t)
	_ = store.Set("k", []byte("old"), time.Hour)
	if err := store.Set("k", []byte("new"), time.Hour); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	res, _ := store.Get("k")
	if string(res.Value) != "new" {
		t.Fatalf("overwrite not applied: %s", res.Value)
	}
}
