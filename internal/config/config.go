/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuonguno98/chunksite/internal/asset"
	"github.com/phuonguno98/chunksite/internal/chunk"
	"github.com/phuonguno98/chunksite/internal/server"
)

// Config represents application configuration.
type Config struct {
	Host string // Listen address
	Port int    // Listen port

	ChunkSize int    // Bytes written per chunk
	MaxRoutes int    // Handler table size
	IndexName string // Asset also served at "/"

	// Rate limiting (RateLimitRPS = 0 disables it)
	RateLimitRPS   float64
	RateLimitBurst int

	MetricsEnabled  bool          // Expose /metrics
	ShutdownTimeout time.Duration // Grace period for in-flight requests

	// Logging
	LogLevel string // Log level: debug, info, warn, error
	LogFile  string // Log file path (empty = stdout)
}

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 80
	DefaultRateLimitBurst  = 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"

	envPrefix = "CHUNKSITE_"
)

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		ChunkSize:       chunk.DefaultSize,
		MaxRoutes:       server.DefaultMaxRoutes,
		IndexName:       asset.DefaultIndex,
		RateLimitBurst:  DefaultRateLimitBurst,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// LoadEnv overrides cfg from CHUNKSITE_* environment variables.
// envFiles are loaded first when present; missing files are ignored, as are
// variables already set in the environment.
func LoadEnv(cfg *Config, envFiles ...string) error {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var err error
	if v, ok := lookupEnv("HOST"); ok {
		cfg.Host = v
	}
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return err
	}
	if cfg.ChunkSize, err = envInt("CHUNK_SIZE", cfg.ChunkSize); err != nil {
		return err
	}
	if cfg.MaxRoutes, err = envInt("MAX_ROUTES", cfg.MaxRoutes); err != nil {
		return err
	}
	if v, ok := lookupEnv("INDEX"); ok {
		cfg.IndexName = v
	}
	if v, ok := lookupEnv("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT_RPS: %w", envPrefix, err)
		}
		cfg.RateLimitRPS = rps
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return err
	}
	if v, ok := lookupEnv("METRICS"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS: %w", envPrefix, err)
		}
		cfg.MetricsEnabled = enabled
	}
	if v, ok := lookupEnv("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSHUTDOWN_TIMEOUT: %w", envPrefix, err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv("LOG_FILE"); ok {
		cfg.LogFile = v
	}

	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envInt(key string, fallback int) (int, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.ChunkSize < 1 {
		return errors.New("chunk size must be at least 1")
	}

	if c.MaxRoutes < 1 {
		return errors.New("max routes must be at least 1")
	}

	if c.IndexName == "" || strings.Contains(c.IndexName, "/") {
		return fmt.Errorf("invalid index name: %q (must be a bare file name)", c.IndexName)
	}

	if c.RateLimitRPS < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("rate limit burst must be at least 1")
	}

	if c.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr=%s, ChunkSize=%d, MaxRoutes=%d, Index=%s, RateLimit=%.1f/%d, Metrics=%v}",
		c.Addr(), c.ChunkSize, c.MaxRoutes, c.IndexName, c.RateLimitRPS, c.RateLimitBurst, c.MetricsEnabled)
}
