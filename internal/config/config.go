// Package config loads worldsim settings from an optional YAML file and
// WORLDSIM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agentik/internal/engine"
)

// Config holds every process-level setting.
type Config struct {
	Port         int           `yaml:"port"`
	DBPath       string        `yaml:"db_path"`
	FortressDir  string        `yaml:"fortress_dir"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	Seed         int64         `yaml:"seed"` // 0 = crypto randomness
	StepInterval time.Duration `yaml:"step_interval"`
	AutoRun      bool          `yaml:"auto_run"`
	AdminKey     string        `yaml:"admin_key"`
	LogLevel     string        `yaml:"log_level"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:         5001,
		DBPath:       "data/worldsim.db",
		FortressDir:  "fortresses",
		Width:        25,
		Height:       19,
		StepInterval: time.Second,
		LogLevel:     "info",
		CORSOrigins:  []string{"*"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Port = envIntOrDefault("WORLDSIM_PORT", c.Port)
	c.DBPath = envOrDefault("WORLDSIM_DB", c.DBPath)
	c.FortressDir = envOrDefault("WORLDSIM_FORTRESS_DIR", c.FortressDir)
	c.AdminKey = envOrDefault("WORLDSIM_ADMIN_KEY", c.AdminKey)
	c.LogLevel = envOrDefault("WORLDSIM_LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("WORLDSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("WORLDSIM_STEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StepInterval = d
		}
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > engine.MaxDimension || c.Height > engine.MaxDimension {
		errs = append(errs, fmt.Errorf("world size %dx%d must be within 1-%d", c.Width, c.Height, engine.MaxDimension))
	}
	if c.StepInterval <= 0 {
		errs = append(errs, fmt.Errorf("step interval %s must be positive", c.StepInterval))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
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
