// Package config loads service configuration from an optional YAML or TOML
// file, then lets environment variables override individual fields, in the
// same precedence order the teacher's api.NewServer applies to
// DATABASE_URL/REDIS_URL/PORT.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"vrppd/internal/vrp/model"
)

// Config carries every value the service needs to boot.
type Config struct {
	ListenAddr  string        `yaml:"listenAddr" toml:"listen_addr"`
	DatabaseDSN string        `yaml:"databaseDsn" toml:"database_dsn"`
	RedisURL    string        `yaml:"redisUrl" toml:"redis_url"`
	AuthMode    string        `yaml:"authMode" toml:"auth_mode"`
	WorkerCount int           `yaml:"workerCount" toml:"worker_count"`
	SAConfig    model.SAConfig `yaml:"saConfig" toml:"sa_config"`
}

// Default returns the built-in configuration: in-memory store, in-process
// broker, dev auth, spec-mandated SA defaults, and a worker count of 4.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		DatabaseDSN: "",
		RedisURL:    "",
		AuthMode:    "dev",
		WorkerCount: 4,
		SAConfig:    model.DefaultSAConfig(),
	}
}

// Load builds a Config starting from Default, layering in CONFIG_FILE (if
// set) and finally environment variable overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); strings.TrimSpace(path) != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".toml") {
		if err := toml.Unmarshal(body, cfg); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		cfg.AuthMode = v
	}
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WorkerCount = n
		}
	}
	if v := os.Getenv("SA_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SAConfig.MaxIterations = n
		}
	}
	if v := os.Getenv("SA_INITIAL_TEMP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SAConfig.InitialTemp = f
		}
	}
}
