package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Check defaults
	if cfg.App.Name != "dashboard-svc" {
		t.Errorf("expected app name 'dashboard-svc', got %s", cfg.App.Name)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected HTTP port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected database driver 'memory', got %s", cfg.Database.Driver)
	}
	if cfg.Cache.DefaultTTL != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Data.ProjectTypeFilter != "studentboliger" {
		t.Errorf("expected project type filter 'studentboliger', got %s", cfg.Data.ProjectTypeFilter)
	}
	if cfg.Export.DefaultFormat != "csv" {
		t.Errorf("expected export format 'csv', got %s", cfg.Export.DefaultFormat)
	}
}

func TestLoader_DefaultCityAliases(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Data.CityAliases["JAKOBSLI"] != "TRONDHEIM" {
		t.Errorf("expected JAKOBSLI alias TRONDHEIM, got %s", cfg.Data.CityAliases["JAKOBSLI"])
	}

	coords, ok := cfg.Data.CityCoordinates["TRONDHEIM"]
	if !ok {
		t.Fatal("expected TRONDHEIM coordinates")
	}
	if coords.Lat != 63.4305 {
		t.Errorf("expected TRONDHEIM lat 63.4305, got %v", coords.Lat)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-service
  version: 2.0.0
  environment: staging
http:
  port: 8090
log:
  level: debug
data:
  dir: /srv/data
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-service" {
		t.Errorf("expected app name 'custom-service', got %s", cfg.App.Name)
	}
	if cfg.App.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %s", cfg.App.Version)
	}
	if cfg.HTTP.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.HTTP.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
	if cfg.Data.Dir != "/srv/data" {
		t.Errorf("expected data dir '/srv/data', got %s", cfg.Data.Dir)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	os.Setenv("ENERGIDASH_APP_NAME", "env-service")
	os.Setenv("ENERGIDASH_HTTP_PORT", "8091")
	defer func() {
		os.Unsetenv("ENERGIDASH_APP_NAME")
		os.Unsetenv("ENERGIDASH_HTTP_PORT")
	}()

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-service" {
		t.Errorf("expected app name 'env-service', got %s", cfg.App.Name)
	}
	if cfg.HTTP.Port != 8091 {
		t.Errorf("expected port 8091, got %d", cfg.HTTP.Port)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: file-service
http:
  port: 8092
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("ENERGIDASH_APP_NAME", "env-wins")
	defer os.Unsetenv("ENERGIDASH_APP_NAME")

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-wins" {
		t.Errorf("expected app name 'env-wins', got %s", cfg.App.Name)
	}
	if cfg.HTTP.Port != 8092 {
		t.Errorf("expected port 8092 from file, got %d", cfg.HTTP.Port)
	}
}

func TestLoader_SliceFromEnv(t *testing.T) {
	os.Setenv("ENERGIDASH_HTTP_CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	defer os.Unsetenv("ENERGIDASH_HTTP_CORS_ALLOWED_ORIGINS")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	origins := cfg.HTTP.CORS.AllowedOrigins
	if len(origins) != 2 {
		t.Fatalf("expected 2 origins, got %d: %v", len(origins), origins)
	}
	if origins[0] != "http://a.example" || origins[1] != "http://b.example" {
		t.Errorf("unexpected origins: %v", origins)
	}
}

func TestLoader_InvalidConfig(t *testing.T) {
	os.Setenv("ENERGIDASH_HTTP_PORT", "-1")
	defer os.Unsetenv("ENERGIDASH_HTTP_PORT")

	if _, err := NewLoader().Load(); err == nil {
		t.Error("expected validation error for negative port")
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	os.Setenv("ENERGIDASH_HTTP_PORT", "-1")
	defer os.Unsetenv("ENERGIDASH_HTTP_PORT")

	defer func() {
		if recover() == nil {
			t.Error("MustLoad should panic on invalid config")
		}
	}()
	MustLoad()
}
