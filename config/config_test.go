package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "PORT", "DATABASE_URL", "LOG_LEVEL", "ALLOWED_ORIGINS", "REQUEST_TIMEOUT", "CATALOG_REFRESH_INTERVAL", "CLUSTER_LIMIT", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_requiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/restaurants")
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CATALOG_REFRESH_INTERVAL", "30s")
	t.Setenv("CLUSTER_LIMIT", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.ClusterLimit != 50 || cfg.CatalogInterval != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.MaxPageLimit != 1000 || cfg.ClusterMaxZoom != 15 {
		t.Fatalf("expected defaults to survive, got %+v", cfg)
	}
}

func TestLoad_yamlFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database_url: postgres://file/restaurants\nlog_level: debug\ncluster_limit: 200\nrequest_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/restaurants" || cfg.ClusterLimit != 200 || cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to override file, got %q", cfg.LogLevel)
	}
}

func TestLoad_clusterMaxZoomZeroIsKept(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database_url: postgres://file/restaurants\ncluster_max_zoom: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClusterMaxZoom != 0 {
		t.Fatalf("expected cluster max zoom 0, got %v", cfg.ClusterMaxZoom)
	}
}

func TestLoad_badDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/restaurants")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "REQUEST_TIMEOUT") {
		t.Fatalf("expected duration error, got %v", err)
	}
}
