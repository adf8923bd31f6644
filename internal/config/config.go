// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	GRPCPort     string // empty disables the gRPC health server
	FrontendURL  string
	Store        StoreConfig
	FAQPath      string
	Model        ModelConfig
	RateLimit    RateLimitConfig
	MaxBodyBytes int64
	Transcript   TranscriptConfig
	Log          LogConfig
}

// StoreConfig selects conversation persistence.
type StoreConfig struct {
	Driver      string // "sqlite" or "json"
	DBPath      string
	StoragePath string
}

// ModelConfig configures the generative model.
type ModelConfig struct {
	GeminiAPIKey string
	ModelName    string
	Probe        bool
	ProbeTimeout time.Duration
}

// RateLimitConfig bounds messages per session.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// TranscriptConfig controls NDJSON transcript logging.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// LogConfig controls process logging.
type LogConfig struct {
	Level      string
	File       string // empty logs to stdout only
	MaxSizeMB  int
	MaxBackups int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		GRPCPort:    getEnv("GRPC_PORT", ""),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
			DBPath:      getEnv("DB_PATH", "./data/conversations.db"),
			StoragePath: getEnv("STORAGE_FILE", "conversations.json"),
		},
		FAQPath: getEnv("FAQ_PATH", "data/faqs.json"),
		Model: ModelConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			ModelName:    getEnv("MODEL_NAME", "gemini-1.5-flash"),
			Probe:        getEnvBool("PROBE_MODELS", true),
			ProbeTimeout: getEnvDuration("PROBE_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		MaxBodyBytes: int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
		Transcript: TranscriptConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", false),
			Dir:       getEnv("TRANSCRIPT_LOG_DIR", "./data/logs/transcripts"),
			QueueSize: getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 1000),
		},
		Log: LogConfig{
			Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case "json":
		if c.Store.StoragePath == "" {
			return fmt.Errorf("STORAGE_FILE cannot be empty")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be sqlite or json, got %q", c.Store.Driver)
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be > 0")
	}
	if c.Transcript.Enabled && c.Transcript.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_DIR cannot be empty")
	}
	if c.Transcript.QueueSize <= 0 {
		return fmt.Errorf("TRANSCRIPT_LOG_QUEUE_SIZE must be > 0")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// APIKeyPreview returns the first characters of the Gemini key for startup
// logs, or "" when no key is set.
func (c *Config) APIKeyPreview() string {
	key := c.Model.GeminiAPIKey
	if len(key) > 10 {
		key = key[:10]
	}
	if key == "" {
		return ""
	}
	return key + "..."
}

// AllowedOrigins returns the CORS origins for the HTTP API.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
