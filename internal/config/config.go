// Package config loads service configuration from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full service configuration.
type Config struct {
	DBPath       string        `yaml:"db_path"`
	APIPort      int           `yaml:"api_port"`
	AdminKey     string        `yaml:"admin_key"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	TickInterval time.Duration `yaml:"tick_interval"`
	CacheSize    int           `yaml:"cache_size"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	RateLimit    RateLimit     `yaml:"rate_limit"`
}

// RateLimit bounds the calendar export endpoint per client IP.
type RateLimit struct {
	Calendar int           `yaml:"calendar"`
	Window   time.Duration `yaml:"window"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:       "data/ritmxoid.db",
		APIPort:      8080,
		LogLevel:     "info",
		LogFormat:    "text",
		TickInterval: time.Second,
		CacheSize:    4096,
		RateLimit: RateLimit{
			Calendar: 30,
			Window:   time.Hour,
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DBPath = envOrDefault("RITMXOID_DB", c.DBPath)
	c.APIPort = envIntOrDefault("RITMXOID_PORT", c.APIPort)
	c.AdminKey = envOrDefault("RITMXOID_ADMIN_KEY", c.AdminKey)
	c.LogLevel = envOrDefault("RITMXOID_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("RITMXOID_LOG_FORMAT", c.LogFormat)
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path is empty", ErrInvalid)
	case c.APIPort <= 0 || c.APIPort > 65535:
		return fmt.Errorf("%w: api_port %d", ErrInvalid, c.APIPort)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick_interval %s", ErrInvalid, c.TickInterval)
	case c.CacheSize <= 0:
		return fmt.Errorf("%w: cache_size %d", ErrInvalid, c.CacheSize)
	case c.RateLimit.Calendar <= 0 || c.RateLimit.Window <= 0:
		return fmt.Errorf("%w: rate_limit", ErrInvalid)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
