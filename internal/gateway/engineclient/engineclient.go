// Package engineclient is the Gateway's Engine RPC Client (C7): a thin
// wrapper over pkg/client.EngineClient giving the Gateway's composition
// services (C8) a single dial point to the Analytics Engine, with a
// health check run once at startup so a down Engine fails fast instead
// of surfacing as a mysterious per-request timeout.
//
// Grounded on the teacher's services/gateway-svc/internal/clients
// single-backend client wrappers (clients/auth.go's dial-once,
// delegate-every-call shape), simplified from the teacher's
// multi-backend clients.Manager since this Gateway talks to exactly one
// downstream: the Analytics Engine.
package engineclient

import (
	"context"
	"fmt"
	"time"

	"github.com/hctx/analytics-platform/pkg/client"
	"github.com/hctx/analytics-platform/pkg/config"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// Client wraps pkg/client.EngineClient for the Gateway's composition
// layer.
type Client struct {
	engine *client.EngineClient
}

// New dials the Engine at cfg.Endpoint and verifies it answers
// HealthCheck before returning.
func New(ctx context.Context, cfg config.EngineConfig) (*Client, error) {
	engine, err := client.NewEngineClient(&client.EngineClientConfig{
		Address:    cfg.Endpoint,
		Timeout:    time.Duration(cfg.ConnectionTimeoutSec) * time.Second,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("engineclient: dial failed: %w", err)
	}

	if _, err := engine.HealthCheck(ctx); err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("engineclient: initial health check failed: %w", err)
	}

	return &Client{engine: engine}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.engine.Close()
}

// Analyze delegates a single-algorithm request to the Engine.
func (c *Client) Analyze(ctx context.Context, req *rpcwire.AnalysisRequest) (*rpcwire.AnalysisResponse, error) {
	return c.engine.Analyze(ctx, req)
}

// BatchAnalyze delegates a batch request to the Engine, returning
// exactly len(req.Requests) responses in input order.
func (c *Client) BatchAnalyze(ctx context.Context, req *rpcwire.BatchAnalysisRequest) ([]*rpcwire.AnalysisResponse, error) {
	return c.engine.BatchAnalyze(ctx, req)
}

// GetSupportedAlgorithms delegates to the Engine's algorithm catalog.
func (c *Client) GetSupportedAlgorithms(ctx context.Context) (*rpcwire.AlgorithmList, error) {
	return c.engine.GetSupportedAlgorithms(ctx)
}

// HealthCheck delegates to the Engine's health probe.
func (c *Client) HealthCheck(ctx context.Context) (*rpcwire.HealthResponse, error) {
	return c.engine.HealthCheck(ctx)
}
