package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/fdg312/fitplanner/internal/storage"
)

var _ storage.KVStore = (*MemoryStorage)(nil)

func TestMemoryStorageGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := New()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "k", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := New()

	in := []byte("abc")
	if err := m.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = 'x'

	out, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value changed through caller slice: %q", out)
	}
	out[1] = 'y'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through returned slice: %q", again)
	}
}
