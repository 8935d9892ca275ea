package blob

import (
	"fmt"
	"strings"

	appcfg "github.com/fdg312/fitplanner/internal/config"
)

const (
	ModeLocal = "local"
	ModeS3    = "s3"
	ModeAuto  = "auto"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewBlobStore builds a blob store using mode local|s3|auto. Local stores
// live under dataDir.
func NewBlobStore(mode, dataDir string, cfg appcfg.S3Config, logger Logger) (Store, string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeLocal
	}

	switch mode {
	case ModeLocal:
		logf(logger, "INFO blob: mode=local (forced) dir=%s", dataDir)
		return newLocal(dataDir)

	case ModeAuto:
		if !cfg.IsConfigured() {
			level, code, msg := cfg.Diagnostics()
			logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
			logf(logger, "INFO blob.s3: %s", cfg.DiagnosticsSummary())
			logf(logger, "INFO blob: mode=local (auto, S3 not configured) dir=%s", dataDir)
			return newLocal(dataDir)
		}

		logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.DiagnosticsSummary())
		store, err := NewS3Store(cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey)
		if err != nil {
			logf(logger, "WARN blob.s3: init_failed=%q, fallback=local", err.Error())
			return newLocal(dataDir)
		}

		logf(logger, "INFO blob: mode=s3 (auto, configured)")
		return store, ModeS3, nil

	case ModeS3:
		if !cfg.IsConfigured() {
			missing := cfg.MissingRequired()
			logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
			logf(logger, "FATAL blob.s3: %s", cfg.DiagnosticsSummary())
			return nil, "", fmt.Errorf("blob mode s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.DiagnosticsSummary())
		store, err := NewS3Store(cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey)
		if err != nil {
			logf(logger, "FATAL blob.s3: init_failed=%v", err)
			return nil, "", fmt.Errorf("blob mode s3 init failed: %w", err)
		}

		logf(logger, "INFO blob: mode=s3 (forced)")
		return store, ModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newLocal(dataDir string) (Store, string, error) {
	store, err := NewLocalStore(dataDir)
	if err != nil {
		return nil, "", err
	}
	return store, ModeLocal, nil
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
