// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server
	Port    string
	GinMode string

	// Limits
	MaxUploadMB int

	// Concurrency
	MaxConcurrentRequests int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeout for one crop/merge/rearrange/label job
	RequestTimeout time.Duration

	// rate limiting (per IP)
	RateLimitEvery  time.Duration
	RateLimitBurst  int
	CleanupInterval time.Duration

	// http
	CORSOrigins []string

	// crop presets overlay (YAML), empty for built-ins only
	PresetsFile string

	// logging
	LogLevel  string
	LogFormat string
}

// Load reads .env files (when present) and then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: ignoring env file: %v\n", err)
	}

	return Config{
		Port:    envStr("PORT", "8000"),
		GinMode: envStr("GIN_MODE", "release"),

		MaxUploadMB: envInt("MAX_UPLOAD_MB", 25),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 8)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 60*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 180*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		RequestTimeout: envDur("REQUEST_TIMEOUT", 120*time.Second),

		RateLimitEvery:  envDur("RATE_LIMIT_EVERY", 300*time.Millisecond),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 30),
		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		PresetsFile: envStr("PRESETS_FILE", ""),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "text"),
	}
}

// MaxUploadBytes is the upload cap in bytes
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AllowAllOrigins reports whether CORS_ORIGINS is the wildcard
func (c Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*"
}

func (c Config) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_REQUESTS must be positive")
	}
	if c.RateLimitBurst <= 0 || c.RateLimitEvery <= 0 {
		return fmt.Errorf("RATE_LIMIT_EVERY and RATE_LIMIT_BURST must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty")
	}
	if !c.AllowAllOrigins() {
		for _, origin := range c.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS cannot mix * with explicit origins")
			}
			if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
				return fmt.Errorf("CORS origin %q must be http/https", origin)
			}
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	if c.PresetsFile != "" {
		if _, err := os.Stat(c.PresetsFile); err != nil {
			return fmt.Errorf("PRESETS_FILE: %w", err)
		}
	}
	return nil
}

// NewLogger builds the process logger described by LOG_LEVEL and LOG_FORMAT
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
