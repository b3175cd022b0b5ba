package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hctx/analytics-platform/pkg/rpccodec"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// EngineClient is the Gateway's Engine RPC Client (C7): a thin wrapper
// over a grpc.ClientConn that invokes the Engine RPC Server's (C6)
// four methods using the shared JSON wire codec.
type EngineClient struct {
	conn *grpc.ClientConn
}

// EngineClientConfig configures a NewEngineClient dial.
type EngineClientConfig struct {
	Address      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultEngineClientConfig returns the Engine RPC Client's defaults,
// matching spec §6's ANALYTICS_ENGINE_ENDPOINT/ANALYTICS_CONNECTION_TIMEOUT_SEC.
func DefaultEngineClientConfig() *EngineClientConfig {
	return &EngineClientConfig{
		Address:      "127.0.0.1:50051",
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
	}
}

// disableRetry is attached to every business-RPC invocation (Analyze,
// BatchAnalyze, GetSupportedAlgorithms) to override the connection's
// chain retry interceptor: spec §4.10 forbids automatic retries of
// analysis calls, since a fallback-then-retry combination could run an
// algorithm twice. The interceptor itself stays installed so the
// initial HealthCheck dial-time probe (New/engineclient.New) still
// retries transient Unavailable/connect failures.
var disableRetry = grpc_retry.Disable()

// NewEngineClient dials cfg.Address and returns a ready EngineClient.
// A grpc-middleware retry interceptor is installed connection-wide for
// transient connect failures (codes.Unavailable/Aborted), but every
// business call below opts out via disableRetry.
func NewEngineClient(cfg *EngineClientConfig) (*EngineClient, error) {
	if cfg == nil {
		cfg = DefaultEngineClientConfig()
	}

	retryOpts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffLinear(cfg.RetryBackoff)),
		grpc_retry.WithCodes(codes.Unavailable, codes.Aborted),
		grpc_retry.WithMax(uint(cfg.MaxRetries)),
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpccodec.Name)),
		grpc.WithChainUnaryInterceptor(grpc_retry.UnaryClientInterceptor(retryOpts...)),
	}

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to engine: %w", err)
	}

	return &EngineClient{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *EngineClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Analyze invokes the engine's Analyze method for a single request,
// bounded by req.Options.TimeoutMs (default 30s per spec §4.7). Never
// retried automatically: see disableRetry.
func (c *EngineClient) Analyze(ctx context.Context, req *rpcwire.AnalysisRequest) (*rpcwire.AnalysisResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, perCallTimeout(req.Options.TimeoutMs))
	defer cancel()

	resp := &rpcwire.AnalysisResponse{}
	if err := c.conn.Invoke(ctx, rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodAnalyze), req, resp, disableRetry); err != nil {
		return nil, err
	}
	return resp, nil
}

// defaultPerCallTimeout is spec §4.7's default when a request leaves
// options.timeout_ms unset or non-positive.
const defaultPerCallTimeout = 30 * time.Second

func perCallTimeout(timeoutMs int32) time.Duration {
	if timeoutMs > 0 {
		return time.Duration(timeoutMs) * time.Millisecond
	}
	return defaultPerCallTimeout
}

var batchAnalyzeStreamDesc = &grpc.StreamDesc{
	StreamName:    rpcwire.MethodBatchAnalyze,
	ServerStreams: true,
}

// BatchAnalyze drives the engine's server-streaming BatchAnalyze call,
// returning exactly len(req.Requests) responses in input order per
// spec §4.6/§8's batch ordering property.
func (c *EngineClient) BatchAnalyze(ctx context.Context, req *rpcwire.BatchAnalysisRequest) ([]*rpcwire.AnalysisResponse, error) {
	stream, err := c.conn.NewStream(ctx, batchAnalyzeStreamDesc, rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodBatchAnalyze), disableRetry)
	if err != nil {
		return nil, err
	}

	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	responses := make([]*rpcwire.AnalysisResponse, 0, len(req.Requests))
	for {
		resp := &rpcwire.AnalysisResponse{}
		if err := stream.RecvMsg(resp); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// GetSupportedAlgorithms invokes the engine's algorithm descriptor listing.
func (c *EngineClient) GetSupportedAlgorithms(ctx context.Context) (*rpcwire.AlgorithmList, error) {
	resp := &rpcwire.AlgorithmList{}
	if err := c.conn.Invoke(ctx, rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodGetSupportedAlgorithms), &rpcwire.Empty{}, resp, disableRetry); err != nil {
		return nil, err
	}
	return resp, nil
}

// HealthCheck invokes the engine's health probe.
func (c *EngineClient) HealthCheck(ctx context.Context) (*rpcwire.HealthResponse, error) {
	resp := &rpcwire.HealthResponse{}
	if err := c.conn.Invoke(ctx, rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodHealthCheck), &rpcwire.Empty{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

