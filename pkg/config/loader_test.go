package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "analytics-platform" {
		t.Errorf("expected app name 'analytics-platform', got %s", cfg.App.Name)
	}
	if cfg.GRPC.ListenAddr != "0.0.0.0:50051" {
		t.Errorf("expected grpc listen_addr '0.0.0.0:50051', got %s", cfg.GRPC.ListenAddr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Engine.Endpoint != "http://127.0.0.1:50051" {
		t.Errorf("expected engine endpoint default, got %s", cfg.Engine.Endpoint)
	}
	if cfg.Engine.ConnectionTimeoutSec != 10 {
		t.Errorf("expected connection timeout default 10, got %d", cfg.Engine.ConnectionTimeoutSec)
	}
	if cfg.Engine.RequestTimeoutSec != 30 {
		t.Errorf("expected request timeout default 30, got %d", cfg.Engine.RequestTimeoutSec)
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
grpc:
  listen_addr: "0.0.0.0:50099"
log:
  level: debug
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
	if cfg.GRPC.ListenAddr != "0.0.0.0:50099" {
		t.Errorf("expected listen_addr 0.0.0.0:50099, got %s", cfg.GRPC.ListenAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	os.Setenv("ANALYTICS_APP_NAME", "env-service")
	os.Setenv("ANALYTICS_ENGINE_ENDPOINT", "http://engine.internal:50051")
	os.Setenv("ANALYTICS_CONNECTION_TIMEOUT_SEC", "7")
	os.Setenv("ANALYTICS_REQUEST_TIMEOUT_SEC", "45")
	os.Setenv("ANALYTICS_LISTEN_ADDR", "0.0.0.0:60000")
	defer func() {
		os.Unsetenv("ANALYTICS_APP_NAME")
		os.Unsetenv("ANALYTICS_ENGINE_ENDPOINT")
		os.Unsetenv("ANALYTICS_CONNECTION_TIMEOUT_SEC")
		os.Unsetenv("ANALYTICS_REQUEST_TIMEOUT_SEC")
		os.Unsetenv("ANALYTICS_LISTEN_ADDR")
	}()

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-service" {
		t.Errorf("expected app name 'env-service', got %s", cfg.App.Name)
	}
	if cfg.Engine.Endpoint != "http://engine.internal:50051" {
		t.Errorf("expected engine endpoint override, got %s", cfg.Engine.Endpoint)
	}
	if cfg.Engine.ConnectionTimeoutSec != 7 {
		t.Errorf("expected connection timeout 7, got %d", cfg.Engine.ConnectionTimeoutSec)
	}
	if cfg.Engine.RequestTimeoutSec != 45 {
		t.Errorf("expected request timeout 45, got %d", cfg.Engine.RequestTimeoutSec)
	}
	if cfg.GRPC.ListenAddr != "0.0.0.0:60000" {
		t.Errorf("expected listen_addr 0.0.0.0:60000, got %s", cfg.GRPC.ListenAddr)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: file-service
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("ANALYTICS_APP_NAME", "env-override")
	defer os.Unsetenv("ANALYTICS_APP_NAME")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-override" {
		t.Errorf("expected env override, got %s", cfg.App.Name)
	}
}

func TestLoader_WithEnvPrefix(t *testing.T) {
	os.Setenv("CUSTOM_APP_NAME", "custom-prefix-service")
	defer os.Unsetenv("CUSTOM_APP_NAME")

	cfg, err := NewLoader(WithEnvPrefix("CUSTOM_")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-prefix-service" {
		t.Errorf("expected 'custom-prefix-service', got %s", cfg.App.Name)
	}
}

func TestMustLoad_Success(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustLoad should not panic with valid config")
		}
	}()

	cfg := MustLoad()
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoad_Simple(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoader_ConfigEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	configContent := `
app:
  name: config-env-var-service
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("CONFIG_PATH", configPath)
	defer os.Unsetenv("CONFIG_PATH")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "config-env-var-service" {
		t.Errorf("expected 'config-env-var-service', got %s", cfg.App.Name)
	}
}
