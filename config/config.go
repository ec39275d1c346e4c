package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Values come from defaults, then an
// optional YAML file named by CONFIG_FILE, then environment variables.
type Config struct {
	Port             string        `yaml:"port"`
	DatabaseURL      string        `yaml:"database_url"`
	LogLevel         string        `yaml:"log_level"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	CatalogInterval  time.Duration `yaml:"catalog_interval"`
	MaxOpenConns     int           `yaml:"max_open_conns"`
	ClusterMaxZoom   float64       `yaml:"cluster_max_zoom"`
	ClusterLimit     int           `yaml:"cluster_limit"`
	DefaultPageLimit int           `yaml:"default_page_limit"`
	MaxPageLimit     int           `yaml:"max_page_limit"`
}

// Default returns the settings used when neither the config file nor the
// environment sets a value.
func Default() Config {
	return Config{
		Port:             "3003",
		LogLevel:         "info",
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:5174"},
		RequestTimeout:   15 * time.Second,
		CatalogInterval:  10 * time.Minute,
		MaxOpenConns:     10,
		ClusterMaxZoom:   15,
		ClusterLimit:     500,
		DefaultPageLimit: 100,
		MaxPageLimit:     1000,
	}
}

// Load reads .env (if present), the CONFIG_FILE YAML (if set) and the
// environment, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REQUEST_TIMEOUT", &c.RequestTimeout},
		{"CATALOG_REFRESH_INTERVAL", &c.CatalogInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CLUSTER_LIMIT", &c.ClusterLimit},
		{"DB_MAX_OPEN_CONNS", &c.MaxOpenConns},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = parsed
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable not set"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.CatalogInterval <= 0 {
		errs = append(errs, errors.New("catalog interval must be positive"))
	}
	if c.ClusterLimit <= 0 || c.DefaultPageLimit <= 0 || c.MaxPageLimit <= 0 {
		errs = append(errs, errors.New("cluster and page limits must be positive"))
	}
	if c.ClusterMaxZoom < 0 || c.ClusterMaxZoom > 22 {
		errs = append(errs, errors.New("cluster max zoom must be within [0, 22]"))
	}
	return errors.Join(errs...)
}
