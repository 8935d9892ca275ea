package dbmigrate

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/fdg312/fitplanner/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Run applies a goose command (up, status, down). An empty migrationsDir
// uses the migrations embedded in the binary.
func Run(command string, dbURL string, migrationsDir string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	dir := configureSource(migrationsDir)
	defer goose.SetBaseFS(nil)

	if err := goose.Run(command, db, dir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

// configureSource points goose at the embedded FS or at a directory on disk
// and returns the directory argument for goose.Run.
func configureSource(migrationsDir string) string {
	if migrationsDir == "" {
		goose.SetBaseFS(migrations.FS)
		return "."
	}
	goose.SetBaseFS(nil)
	return migrationsDir
}
