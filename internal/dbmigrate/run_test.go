package dbmigrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/fdg312/fitplanner/migrations"
)

func TestEmbeddedMigrationsContainKVTable(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "00001_kv_blobs.sql")
	if err != nil {
		t.Fatalf("expected embedded kv_blobs migration: %v", err)
	}
	sql := string(raw)
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE TABLE IF NOT EXISTS kv_blobs"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestConfigureSource(t *testing.T) {
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	if dir := configureSource(""); dir != "." {
		t.Fatalf("expected embedded dir '.', got %q", dir)
	}
	if dir := configureSource("db/migrations"); dir != "db/migrations" {
		t.Fatalf("expected explicit dir, got %q", dir)
	}
}

func TestRunRequiresURL(t *testing.T) {
	if err := Run("up", "", ""); err == nil {
		t.Fatal("expected error for empty database URL")
	}
}
