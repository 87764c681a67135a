package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_PutDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	obj, err := store.Put(ctx, "gallery/a.txt", strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.URL != "/uploads/gallery/a.txt" {
		t.Fatalf("unexpected url %q", obj.URL)
	}
	data, err := os.ReadFile(filepath.Join(dir, "gallery", "a.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("file not written: %v %q", err, data)
	}

	if _, err := store.Put(ctx, "gallery/a.txt", strings.NewReader("again"), 5, "text/plain"); err == nil {
		t.Fatalf("expected existing key to be refused")
	}

	if err := store.Delete(ctx, "gallery/a.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "gallery/a.txt"); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	for _, key := range []string{"../evil.txt", "/etc/passwd", "."} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}
