package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/programme-lv/judge/internal/logging"
	"github.com/programme-lv/judge/internal/xdg"
)

const (
	appName = "judge"

	DefaultBindAddr       = "127.0.0.1:12345"
	DefaultCatalogPath    = "config.toml"
	DefaultCompileTimeout = 30 * time.Second
	DefaultNatsSubject    = "judge.progress"
	DefaultAwsRegion      = "eu-central-1"
)

type EnvConfig struct {
	// BindAddr is empty when JUDGE_BIND_ADDR is unset so that the catalog
	// can still provide the address.
	BindAddr       string
	CatalogPath    string
	ScratchDir     string
	CacheDir       string
	LogLevel       slog.Level
	CompileTimeout time.Duration

	NatsURL     string
	NatsSubject string
	SqsURL      string
	AwsRegion   string
}

// ReadEnvConfig loads .env from the working directory when there is one and
// reads the JUDGE_* variables. Variables already set in the process
// environment win over the file.
func ReadEnvConfig() (*EnvConfig, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dirs := xdg.Lookup().Join(appName)
	result := &EnvConfig{
		BindAddr:    os.Getenv("JUDGE_BIND_ADDR"),
		CatalogPath: getenv("JUDGE_CATALOG", defaultCatalog(dirs.Config)),
		ScratchDir:  getenv("JUDGE_SCRATCH_DIR", dirs.Runtime),
		CacheDir:    getenv("JUDGE_CACHE_DIR", filepath.Join(dirs.Cache, "cases")),
		NatsURL:     os.Getenv("JUDGE_NATS_URL"),
		NatsSubject: getenv("JUDGE_NATS_SUBJECT", DefaultNatsSubject),
		SqsURL:      os.Getenv("JUDGE_SQS_URL"),
		AwsRegion:   getenv("AWS_REGION", DefaultAwsRegion),
	}

	result.LogLevel, err = logging.ParseLevel(os.Getenv("JUDGE_LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("JUDGE_LOG_LEVEL: %w", err)
	}

	result.CompileTimeout = DefaultCompileTimeout
	if s := os.Getenv("JUDGE_COMPILE_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("JUDGE_COMPILE_TIMEOUT: invalid duration %q", s)
		}
		result.CompileTimeout = d
	}

	return result, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultCatalog prefers config.toml in the working directory and falls
// back to the one in the user's config dir.
func defaultCatalog(configDir string) string {
	if _, err := os.Stat(DefaultCatalogPath); err == nil {
		return DefaultCatalogPath
	}
	alt := filepath.Join(configDir, DefaultCatalogPath)
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return DefaultCatalogPath
}
