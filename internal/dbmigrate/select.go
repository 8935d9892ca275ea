package dbmigrate

import (
	"fmt"

	"github.com/fdg312/fitplanner/internal/config"
)

// Target is one resolved migration run: the database to migrate and where
// the SQL files come from.
type Target struct {
	URL       string
	URLSource string // env var the URL came from
	Warning   string
	Dir       string // empty selects the embedded migrations
}

// MigrationsSource names the migration set for logs.
func (t Target) MigrationsSource() string {
	if t.Dir == "" {
		return "embedded"
	}
	return t.Dir
}

// UsesPostgres reports whether the configured storage mode ends up on the
// Postgres kv_blobs table, which is the only thing the migrations create.
// auto resolves to Postgres only when a runtime URL is set.
func UsesPostgres(cfg *config.Config) bool {
	switch cfg.StorageMode {
	case config.StorageModePostgres:
		return true
	case config.StorageModeAuto:
		return cfg.DatabaseURL != ""
	default:
		return false
	}
}

// SelectTarget resolves the database URL for DDL and pairs it with dir.
// URL priority: DATABASE_URL_DIRECT, then DATABASE_URL, then
// DATABASE_URL_POOLED with a warning. requireDirect accepts only the
// direct URL.
func SelectTarget(cfg *config.Config, requireDirect bool, dir string) (Target, error) {
	t := Target{Dir: dir}

	switch {
	case cfg.DatabaseURLDirect != "":
		t.URL, t.URLSource = cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT"
	case requireDirect:
		return Target{}, fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
	case cfg.DatabaseURLRaw != "":
		t.URL, t.URLSource = cfg.DatabaseURLRaw, "DATABASE_URL"
	case cfg.DatabaseURLPooled != "":
		t.URL, t.URLSource = cfg.DatabaseURLPooled, "DATABASE_URL_POOLED"
		t.Warning = "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT"
	default:
		return Target{}, fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
	}

	return t, nil
}
