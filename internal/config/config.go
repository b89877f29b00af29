package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Pathstore connection
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentStore int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int
	MinChunkTokens      int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel slog.Level
}

// source resolves a setting: the environment wins, then the optional YAML
// file named by CONFIG_FILE, keyed by the lower-cased variable name.
type source struct {
	file map[string]string
}

// Load reads configuration from the environment and CONFIG_FILE.
func Load() (Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}

	cfg := Config{
		Port: src.envOr("PORT", "8090"),

		PathstoreURL:    src.envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: src.envOr("PATHSTORE_API_KEY", ""),

		APIKey: src.envOr("MDCHAPTER_API_KEY", ""),

		WorkerCount:        src.envInt("WORKER_COUNT", 4),
		MaxQueueSize:       src.envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStore: src.envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: src.envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:    src.envInt("DEFAULT_CHUNK_SIZE", 1500),
		DefaultChunkOverlap: src.envInt("DEFAULT_CHUNK_OVERLAP", 200),
		MinChunkTokens:      src.envInt("MIN_CHUNK_TOKENS", 100),

		JobTTL: src.envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: src.envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: src.envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1500
	}
	if cfg.DefaultChunkOverlap <= 0 {
		cfg.DefaultChunkOverlap = 200
	}
	if cfg.MinChunkTokens <= 0 {
		cfg.MinChunkTokens = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("MDCHAPTER_API_KEY is required")
	}
	return nil
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func (s source) get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[strings.ToLower(key)]
}

func (s source) envOr(key, fallback string) string {
	if v := s.get(key); v != "" {
		return v
	}
	return fallback
}

func (s source) envInt(key string, fallback int) int {
	if v := s.get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envInt64(key string, fallback int64) int64 {
	if v := s.get(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envBool(key string, fallback bool) bool {
	if v := s.get(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func (s source) envDuration(key string, fallback time.Duration) time.Duration {
	if v := s.get(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func (s source) envLevel(key string, fallback slog.Level) slog.Level {
	if v := s.get(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
