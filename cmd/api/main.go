package main

import (
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/dbmigrate"
	"github.com/fdg312/fitplanner/internal/httpserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL config: %v", err)
	}

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		runStartupMigrations(cfg)
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	if err := server.Start(); err != nil {
		log.Printf("FATAL http: %v", err)
	}
}

// runStartupMigrations applies the embedded migrations when the schedule
// lives in Postgres. Other storage modes have nothing to migrate.
func runStartupMigrations(cfg *config.Config) {
	if !dbmigrate.UsesPostgres(cfg) {
		log.Printf("startup migrations: skipped (storage_mode=%s)", cfg.StorageMode)
		return
	}

	target, err := dbmigrate.SelectTarget(cfg, false, "")
	if err != nil {
		log.Fatalf("FATAL startup migrations: %v", err)
	}
	if target.Warning != "" {
		log.Printf("WARN startup migrations: %s", target.Warning)
	}

	log.Printf("startup migrations: command=up using=%s migrations=%s", target.URLSource, target.MigrationsSource())
	if err := dbmigrate.Run("up", target.URL, target.Dir); err != nil {
		log.Fatalf("FATAL startup migrations failed: %v", err)
	}
	log.Printf("startup migrations: completed")
}

// printStartupBanner logs the resolved configuration once. Secrets only
// show as "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Fit Planner API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)
	log.Printf("  log_level        = %s", cfg.LogLevel)

	log.Println("---- storage ----")
	log.Printf("  storage_mode     = %s", cfg.StorageMode)
	log.Printf("  data_dir         = %s", nonEmptyOrDash(cfg.DataDir))
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", config.SetOrNot(cfg.DatabaseURLDirect))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)

	log.Println("---- s3 ----")
	level, code, msg := cfg.S3.Diagnostics()
	log.Printf("  %s code=%s %s", level, code, msg)
	if cfg.S3.IsConfigured() {
		log.Printf("  %s", cfg.S3.DiagnosticsSummary())
	}

	log.Println("---- http ----")
	log.Printf("  cors_origins     = %s", strings.Join(cfg.CORSAllowedOrigins, ","))
	log.Printf("  rate_limit_rps   = %d (burst=%d)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	log.Printf("  ai_rate_per_min  = %d", cfg.AIRateLimitPerMinute)

	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AIMode)
	if cfg.AIMode == config.AIModeOpenAI {
		log.Printf("  openai_model     = %s", cfg.OpenAIModel)
		log.Printf("  openai_base_url  = %s", cfg.OpenAIBaseURL)
		log.Printf("  openai_api_key   = %s", config.SetOrNot(cfg.OpenAIAPIKey))
		log.Printf("  timeout_seconds  = %d (0 = none)", cfg.AITimeoutSeconds)
	}
	log.Printf("  chat_history     = %d", cfg.ChatHistoryLimit)

	log.Println("=====================================")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "prod" || cfg.Env == "production" || cfg.Env == "staging"

	if cfg.StorageMode == config.StorageModeS3 {
		if missing := cfg.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL s3: STORAGE_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.AIMode == config.AIModeOpenAI && strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Fatal("FATAL ai: AI_MODE=openai but OPENAI_API_KEY is not set")
	}

	if isProd && cfg.StorageMode == config.StorageModeMemory {
		log.Fatalf("FATAL storage: STORAGE_MODE=memory loses the schedule on restart, refusing in %s", cfg.Env)
	}

	if isProd && len(cfg.CORSAllowedOrigins) == 0 {
		log.Printf("WARN cors: no CORS_ALLOWED_ORIGINS in %s, browsers will be blocked", cfg.Env)
	}
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
