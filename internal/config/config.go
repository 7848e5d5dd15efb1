package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgallion1/pagesplit/internal/split"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Output
	OutputRoot string

	// Worker pool
	WorkerCount      int
	MaxQueueSize     int
	ChunkConcurrency int

	// Upload limits
	MaxUploadBytes int64

	// Largest page_count accepted by the plan preview.
	MaxPlanPages int

	// Job state
	JobTTL time.Duration

	// Reopen every written chunk and check its page count.
	VerifyChunks bool
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, is applied first without overriding set variables.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PAGESPLIT_API_KEY"),

		OutputRoot: envOr("OUTPUT_ROOT", filepath.Join(os.TempDir(), "pagesplit")),

		WorkerCount:      envInt("WORKER_COUNT", 4),
		MaxQueueSize:     envInt("MAX_QUEUE_SIZE", 100),
		ChunkConcurrency: envInt("CHUNK_CONCURRENCY", 1),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB
		MaxPlanPages:   envInt("MAX_PLAN_PAGES", 100000),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		VerifyChunks: envBool("VERIFY_CHUNKS", false),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.ChunkConcurrency <= 0 {
		cfg.ChunkConcurrency = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.MaxPlanPages <= 0 || cfg.MaxPlanPages > split.MaxChunks {
		cfg.MaxPlanPages = 100000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PAGESPLIT_API_KEY is required")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("OUTPUT_ROOT is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
