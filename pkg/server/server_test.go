package server

import (
	"testing"

	"github.com/hctx/analytics-platform/pkg/config"
	"github.com/hctx/analytics-platform/pkg/logger"
	"github.com/hctx/analytics-platform/pkg/observability"

	"github.com/stretchr/testify/assert"
)

func init() {
	logger.Init("error")
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "test-app"},
		GRPC: config.GRPCConfig{
			ListenAddr: "127.0.0.1:0",
			KeepAlive:  config.KeepAliveConfig{},
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}

	srv := New(cfg)
	assert.NotNil(t, srv)
	assert.NotNil(t, srv.GetEngine())
	assert.NotNil(t, srv.GetObservabilitySink())
}

func TestNewServer_WithOptions(t *testing.T) {
	cfg := &config.Config{
		App:  config.AppConfig{Name: "test-app"},
		GRPC: config.GRPCConfig{ListenAddr: "127.0.0.1:0"},
	}

	sink := observability.NoopSink{}
	opts := &ServerOptions{
		ObservabilitySink: sink,
	}

	srv := NewWithOptions(cfg, opts)
	assert.NotNil(t, srv)
	assert.Equal(t, sink, srv.GetObservabilitySink())
}

func TestServer_SetServingStatus(t *testing.T) {
	cfg := &config.Config{
		App:  config.AppConfig{Name: "test-app"},
		GRPC: config.GRPCConfig{ListenAddr: "127.0.0.1:0"},
	}

	srv := New(cfg)
	// Should not panic.
	srv.SetServingStatus(1)
}
