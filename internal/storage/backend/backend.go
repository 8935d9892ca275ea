package backend

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/fdg312/fitplanner/internal/blob"
	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/storage"
	"github.com/fdg312/fitplanner/internal/storage/blobkv"
	"github.com/fdg312/fitplanner/internal/storage/memory"
	"github.com/fdg312/fitplanner/internal/storage/postgres"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Open builds the KVStore selected by cfg.StorageMode and returns it with
// the resolved mode. An empty mode means memory. A postgres connection
// failure falls back to memory.
func Open(ctx context.Context, cfg *config.Config, logger Logger) (storage.KVStore, string, error) {
	return open(ctx, cfg, logger, true)
}

// OpenStrict is Open without the memory fallback: a postgres connection
// failure is returned as an error. Tools that read or rewrite stored data
// use it so they never act on an empty stand-in.
func OpenStrict(ctx context.Context, cfg *config.Config, logger Logger) (storage.KVStore, string, error) {
	return open(ctx, cfg, logger, false)
}

func open(ctx context.Context, cfg *config.Config, logger Logger, fallback bool) (storage.KVStore, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.StorageMode))
	if mode == config.StorageModeAuto {
		if cfg.DatabaseURL != "" {
			mode = config.StorageModePostgres
		} else {
			mode = config.StorageModeFile
		}
		logf(logger, "INFO storage: mode=%s (auto)", mode)
	}

	switch mode {
	case "", config.StorageModeMemory:
		logf(logger, "INFO storage: using in-memory storage")
		return memory.New(), config.StorageModeMemory, nil

	case config.StorageModeFile:
		objects, _, err := blob.NewBlobStore(blob.ModeLocal, cfg.DataDir, cfg.S3, logger)
		if err != nil {
			return nil, "", fmt.Errorf("file storage: %w", err)
		}
		logf(logger, "INFO storage: using file storage dir=%s", cfg.DataDir)
		return blobkv.New(objects, ""), config.StorageModeFile, nil

	case config.StorageModeS3:
		objects, _, err := blob.NewBlobStore(blob.ModeS3, cfg.DataDir, cfg.S3, logger)
		if err != nil {
			return nil, "", fmt.Errorf("s3 storage: %w", err)
		}
		prefix := path.Join(cfg.S3.KeyPrefix, "state")
		logf(logger, "INFO storage: using s3 storage bucket=%s prefix=%s", cfg.S3.Bucket, prefix)
		return blobkv.New(objects, prefix), config.StorageModeS3, nil

	case config.StorageModePostgres:
		if cfg.DatabaseURL == "" {
			return nil, "", fmt.Errorf("postgres storage: DATABASE_URL is empty")
		}
		logf(logger, "INFO storage: connecting to PostgreSQL...")
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logf(logger, "WARN storage: postgres connect failed: %v", err)
			if !fallback {
				return nil, "", fmt.Errorf("postgres storage: %w", err)
			}
			logf(logger, "WARN storage: fallback to in-memory storage")
			return memory.New(), config.StorageModeMemory, nil
		}
		logf(logger, "INFO storage: PostgreSQL connected")
		return pg, config.StorageModePostgres, nil

	default:
		return nil, "", fmt.Errorf("unsupported storage mode: %s", mode)
	}
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
