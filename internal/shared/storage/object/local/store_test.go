package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/object"
)

func TestPutAndOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.Put(ctx, "audit/abc/2026-05-04/one.json", "application/json", strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len(`{"ok":true}`)) {
		t.Fatalf("unexpected size %d", n)
	}

	rc, err := store.Open(ctx, "audit/abc/2026-05-04/one.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected content %q", data)
	}

	if _, err := store.Put(ctx, "audit/abc/2026-05-04/one.json", "application/json", strings.NewReader("{}")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../etc/passwd", "/abs/path", ""} {
		if _, err := store.Put(context.Background(), key, "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := store.Open(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey on open, got %v", key, err)
		}
	}
}

func TestPutHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(t.TempDir()).Put(ctx, "a.json", "application/json", strings.NewReader("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
