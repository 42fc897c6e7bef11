// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Marker   MarkerConfig   `yaml:"marker"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CatalogConfig selects and configures the offer snapshot source.
type CatalogConfig struct {
	Source   string            `yaml:"source"` // postgres, http, file
	Postgres PostgresConfig    `yaml:"postgres"`
	HTTP     HTTPCatalogConfig `yaml:"http"`
	File     FileCatalogConfig `yaml:"file"`
}

// PostgresConfig defines read-only PostgreSQL catalog settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		p.Host, p.Port, p.Name, p.User, p.Password, p.SSLMode,
	)
}

// HTTPCatalogConfig defines the remote catalog API settings.
type HTTPCatalogConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines catalog API rate limiting settings.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// FileCatalogConfig points at a JSON offer snapshot on disk.
type FileCatalogConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig defines scoring weights and the top-pick count.
type ScoringConfig struct {
	Weights  ScoringWeights `yaml:"weights"`
	TopPicks int            `yaml:"top_picks"`
}

// ScoringWeights defines the relative weight of price versus distance.
// They must sum to 1.0.
type ScoringWeights struct {
	Price    float64 `yaml:"price"`
	Distance float64 `yaml:"distance"`
}

// MarkerConfig defines zoom thresholds for marker labels.
type MarkerConfig struct {
	LabelMinZoom  int `yaml:"label_min_zoom"`
	LargeFontZoom int `yaml:"large_font_zoom"`
}

// ClusterConfig defines the screen-space clustering radius.
type ClusterConfig struct {
	RadiusPx float64 `yaml:"radius_px"`
}

// ScheduleConfig defines the catalog snapshot refresh interval.
type ScheduleConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is given:
// file-based catalog, default weights, standard zoom thresholds.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyCatalogDefaults(&cfg.Catalog)
	applyScoringDefaults(&cfg.Scoring)
	applyMarkerDefaults(&cfg.Marker)
	applyClusterDefaults(&cfg.Cluster)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.Source == "" {
		c.Source = "file"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.PoolSize == 0 {
		c.Postgres.PoolSize = 5
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 10 * time.Second
	}
	if c.HTTP.RateLimit.PerSecond == 0 {
		c.HTTP.RateLimit.PerSecond = 5.0
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 10
	}
}

func applyScoringDefaults(s *ScoringConfig) {
	if s.Weights.Price == 0 && s.Weights.Distance == 0 {
		s.Weights.Price = 0.6
		s.Weights.Distance = 0.4
	}
	if s.TopPicks == 0 {
		s.TopPicks = 3
	}
}

func applyMarkerDefaults(m *MarkerConfig) {
	if m.LabelMinZoom == 0 {
		m.LabelMinZoom = 15
	}
	if m.LargeFontZoom == 0 {
		m.LargeFontZoom = 16
	}
}

func applyClusterDefaults(c *ClusterConfig) {
	if c.RadiusPx == 0 {
		c.RadiusPx = 64
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshInterval == 0 {
		s.RefreshInterval = 5 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	sum := cfg.Scoring.Weights.Price + cfg.Scoring.Weights.Distance
	if cfg.Scoring.Weights.Price < 0 || cfg.Scoring.Weights.Distance < 0 ||
		sum < 0.999 || sum > 1.001 {
		errs = append(errs, fmt.Errorf(
			"scoring.weights must be non-negative and sum to 1.0 (got %.3f)", sum,
		))
	}
	if cfg.Scoring.TopPicks < 0 {
		errs = append(errs, fmt.Errorf("scoring.top_picks must not be negative"))
	}
	if cfg.Cluster.RadiusPx < 0 {
		errs = append(errs, fmt.Errorf("cluster.radius_px must not be negative"))
	}
	if cfg.Marker.LargeFontZoom < cfg.Marker.LabelMinZoom {
		errs = append(errs, fmt.Errorf(
			"marker.large_font_zoom must not be below marker.label_min_zoom",
		))
	}

	switch cfg.Catalog.Source {
	case "file":
		// Path may be provided per-command; nothing to validate here.
	case "postgres":
		if cfg.Catalog.Postgres.Host == "" {
			errs = append(errs, fmt.Errorf("catalog.postgres.host is required when source is postgres"))
		}
		if cfg.Catalog.Postgres.Name == "" {
			errs = append(errs, fmt.Errorf("catalog.postgres.name is required when source is postgres"))
		}
		if cfg.Catalog.Postgres.User == "" {
			errs = append(errs, fmt.Errorf("catalog.postgres.user is required when source is postgres"))
		}
	case "http":
		if cfg.Catalog.HTTP.BaseURL == "" {
			errs = append(errs, fmt.Errorf("catalog.http.base_url is required when source is http"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"catalog.source must be one of: postgres, http, file (got %q)",
			cfg.Catalog.Source,
		))
	}

	return errors.Join(errs...)
}
