package blobkv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fdg312/fitplanner/internal/blob"
	"github.com/fdg312/fitplanner/internal/storage"
)

var _ storage.KVStore = (*Store)(nil)

func TestStoreOverLocalBlobs(t *testing.T) {
	dir := t.TempDir()
	objects, err := blob.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	kv := New(objects, "/kv/")
	ctx := context.Background()

	if _, err := kv.Get(ctx, "fitnessPlannerProfile"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected storage.ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "fitnessPlannerProfile", []byte(`{"age":25}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "kv", "fitnessPlannerProfile.json")); err != nil {
		t.Fatalf("expected object file under prefix: %v", err)
	}

	got, err := kv.Get(ctx, "fitnessPlannerProfile")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"age":25}` {
		t.Fatalf("unexpected value %s", got)
	}

	if err := kv.Delete(ctx, "fitnessPlannerProfile"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "fitnessPlannerProfile"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected storage.ErrNotFound after delete, got %v", err)
	}
}

type failingBlobs struct {
	blob.Store
}

func (failingBlobs) GetObject(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func TestStorePropagatesBackendErrors(t *testing.T) {
	kv := New(failingBlobs{}, "")
	_, err := kv.Get(context.Background(), "k")
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected backend error, got %v", err)
	}
}
