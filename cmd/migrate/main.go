package main

import (
	"flag"
	"log"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/dbmigrate"
)

func main() {
	dir := flag.String("dir", "", "migrations directory (default: embedded)")
	requireDirect := flag.Bool("require-direct", false, "only accept DATABASE_URL_DIRECT")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalf("usage: go run ./cmd/migrate [-dir path] [up|status|down]")
	}

	command := flag.Arg(0)
	switch command {
	case "up", "status", "down":
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL config: %v", err)
	}
	if !dbmigrate.UsesPostgres(cfg) {
		log.Printf("WARN migrate: storage_mode=%s does not use Postgres, migrating anyway", cfg.StorageMode)
	}

	target, err := dbmigrate.SelectTarget(cfg, *requireDirect, *dir)
	if err != nil {
		log.Fatal(err)
	}
	if target.Warning != "" {
		log.Printf("WARN migrate: %s", target.Warning)
	}
	log.Printf("migrate: command=%s using=%s migrations=%s", command, target.URLSource, target.MigrationsSource())

	if err := dbmigrate.Run(command, target.URL, target.Dir); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
