package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidWorkers        = errors.New("max_workers must be at least 1")
	ErrInvalidRequestTimeout = errors.New("request_timeout must be positive")
	ErrInvalidDelayRange     = errors.New("min_delay must be non-negative and not exceed max_delay")
	ErrInvalidSettleInterval = errors.New("settle_interval must be positive")
	ErrInvalidMaxRetries     = errors.New("max_retries must be at least 1")
	ErrInvalidLogLevel       = errors.New("log_level must be one of: debug, info, warn, error")
	ErrNoSink                = errors.New("at least one of csv_path, sqlite_path or postgres.enabled is required")
)

type Config struct {
	SitesPath string `yaml:"sites_path"`

	MaxWorkers int `yaml:"max_workers"`
	// RequestTimeout bounds one page render, navigation through final HTML.
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	ContainerTimeout time.Duration `yaml:"container_timeout"`
	SettleInterval   time.Duration `yaml:"settle_interval"`
	MaxScrolls       int           `yaml:"max_scrolls"`
	// SiteTimeout is the wall-clock budget of one site. Zero disables it.
	SiteTimeout time.Duration `yaml:"site_timeout"`

	MinDelay               time.Duration `yaml:"min_delay"`
	MaxDelay               time.Duration `yaml:"max_delay"`
	MaxRetries             int           `yaml:"max_retries"`
	RetryBackoff           time.Duration `yaml:"retry_backoff"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures"`

	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`

	CSVPath    string         `yaml:"csv_path"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`

	LogLevel string `yaml:"log_level"`
}

type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the pgx connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSLMode,
	)
}

func DefaultConfig() *Config {
	return &Config{
		SitesPath:              "sites.yaml",
		MaxWorkers:             1,
		RequestTimeout:         2 * time.Minute,
		ContainerTimeout:       15 * time.Second,
		SettleInterval:         2 * time.Second,
		MaxScrolls:             30,
		SiteTimeout:            30 * time.Minute,
		MinDelay:               2 * time.Second,
		MaxDelay:               4 * time.Second,
		MaxRetries:             2,
		RetryBackoff:           2 * time.Second,
		MaxConsecutiveFailures: 3,
		Headless:               true,
		CSVPath:                "output/listings.csv",
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "car_scraper",
			SSLMode: "disable",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over DefaultConfig. A sibling
// "<name>.local.<ext>" file, when present, overrides non-zero fields.
// A missing main file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := decodeYAMLFile(path, cfg); err != nil {
		return nil, err
	}

	local := LocalPath(path)
	var override Config
	if err := decodeYAMLFile(local, &override); err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge %s: %w", local, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func decodeYAMLFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LocalPath returns the override file path for name, e.g. config.yaml -> config.local.yaml.
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func (c *Config) Validate() error {
	if c.MaxWorkers < 1 {
		return ErrInvalidWorkers
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	if c.MinDelay < 0 || c.MinDelay > c.MaxDelay {
		return ErrInvalidDelayRange
	}
	if c.SettleInterval <= 0 {
		return ErrInvalidSettleInterval
	}
	if c.MaxRetries < 1 {
		return ErrInvalidMaxRetries
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.CSVPath == "" && c.SQLitePath == "" && !c.Postgres.Enabled {
		return ErrNoSink
	}
	return nil
}
