// Package config defines the layered configuration for both binaries
// (cmd/engine, cmd/gateway). A single Config struct is shared; each
// binary reads only the sections relevant to it.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"`
	GRPC      GRPCConfig      `koanf:"grpc"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Engine    EngineConfig    `koanf:"engine"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Bridge    BridgeConfig    `koanf:"bridge"`
	Auth      AuthConfig      `koanf:"auth"`
}

// AppConfig carries process identity.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// GRPCConfig configures the Engine's gRPC server (C6).
type GRPCConfig struct {
	ListenAddr        string          `koanf:"listen_addr"`
	MaxRecvMsgSize    int             `koanf:"max_recv_msg_size"` // bytes
	MaxSendMsgSize    int             `koanf:"max_send_msg_size"` // bytes
	MaxConcurrentConn int             `koanf:"max_concurrent_conn"`
	KeepAlive         KeepAliveConfig `koanf:"keepalive"`
	TLS               TLSConfig       `koanf:"tls"`
}

// KeepAliveConfig mirrors google.golang.org/grpc/keepalive.ServerParameters.
type KeepAliveConfig struct {
	MaxConnectionIdle     time.Duration `koanf:"max_connection_idle"`
	MaxConnectionAge      time.Duration `koanf:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `koanf:"max_connection_age_grace"`
	Time                  time.Duration `koanf:"time"`
	Timeout               time.Duration `koanf:"timeout"`
}

// TLSConfig is carried for parity with the teacher stack; TLS
// termination is out of scope for this spec (see Non-goals).
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// HTTPConfig configures the Gateway's statistics surface (C9) and its
// GET /health surface.
type HTTPConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	HealthAddr      string        `koanf:"health_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures pkg/metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures pkg/telemetry.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// EngineConfig describes how the Gateway's Engine RPC Client (C7) reaches
// the Analytics Engine. Field names follow spec §6's environment keys.
type EngineConfig struct {
	Endpoint             string        `koanf:"endpoint"`
	ConnectionTimeoutSec int           `koanf:"connection_timeout_sec"`
	RequestTimeoutSec    int           `koanf:"request_timeout_sec"`
	MaxRecvMsgSize       int           `koanf:"max_recv_msg_size"`
	MaxSendMsgSize       int           `koanf:"max_send_msg_size"`
	MaxRetries           int           `koanf:"max_retries"`
	RetryBackoff         time.Duration `koanf:"retry_backoff"`
	KeepAliveTime        time.Duration `koanf:"keepalive_time"`
}

// RateLimitConfig configures the Gateway's optional inbound limiter.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// BridgeConfig toggles and parameterizes the Alternate-Language Bridge
// (C3).
type BridgeConfig struct {
	Enabled    bool          `koanf:"enabled"`
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
}

// AuthConfig gates the Gateway's optional CredentialStore check (spec
// §6): when Enabled, internal/gateway/authstub verifies an inbound
// token's signature and rejects the call if verification fails; the
// core only ever sees the resulting bool, never credential details.
type AuthConfig struct {
	Enabled bool   `koanf:"enabled"`
	Secret  string `koanf:"secret"`
}

// Validate checks invariants the loader cannot express declaratively.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Engine.ConnectionTimeoutSec <= 0 {
		errs = append(errs, "engine.connection_timeout_sec must be positive")
	}
	if c.Engine.RequestTimeoutSec <= 0 {
		errs = append(errs, "engine.request_timeout_sec must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether App.Environment names a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether App.Environment names production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
