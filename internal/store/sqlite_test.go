package store

import (
	"path/filepath"
	"testing"
)

func TestSQLiteSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer kv.Close()

	if _, ok, err := kv.Get("snapshot"); err != nil || ok {
		t.Fatalf("fresh store Get = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Set("snapshot", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := kv.Get("snapshot")
	if err != nil || !ok || value != `{"a":1}` {
		t.Fatalf("get = %q, %v, %v; want stored blob", value, ok, err)
	}

	// Set replaces the prior value.
	if err := kv.Set("snapshot", `{"a":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err = kv.Get("snapshot")
	if err != nil || !ok || value != `{"a":2}` {
		t.Fatalf("get after overwrite = %q, %v, %v", value, ok, err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.db")

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := kv.Set("snapshot", "persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("snapshot")
	if err != nil || !ok || value != "persisted" {
		t.Fatalf("get after reopen = %q, %v, %v", value, ok, err)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemory()

	if _, ok, _ := kv.Get("missing"); ok {
		t.Fatal("empty store returned a value")
	}
	if err := kv.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, _ := kv.Get("k")
	if !ok || value != "v" {
		t.Fatalf("get = %q, %v", value, ok)
	}
}
