// Package rpcserver is the Engine RPC Server (C6): it exposes the
// Dispatcher (C4), Registry (C1) and Bridge (C3) over
// rpcwire.EngineServiceName, using pkg/rpccodec's JSON wire codec and
// pkg/server's grpc.Server bootstrap.
package rpcserver

import (
	"context"
	"strconv"
	"time"

	"github.com/hctx/analytics-platform/internal/engine/bridge"
	"github.com/hctx/analytics-platform/internal/engine/dispatch"
	"github.com/hctx/analytics-platform/internal/engine/registry"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// Server implements EngineServer against a Dispatcher, Registry and
// Bridge built at Engine startup.
type Server struct {
	dispatcher *dispatch.Dispatcher
	registry   *registry.Registry
	bridge     *bridge.Bridge
	startedAt  time.Time
}

// New builds an Engine RPC Server from its three collaborators.
func New(d *dispatch.Dispatcher, reg *registry.Registry, br *bridge.Bridge) *Server {
	return &Server{dispatcher: d, registry: reg, bridge: br, startedAt: time.Now()}
}

// Analyze dispatches a single algorithm request.
func (s *Server) Analyze(ctx context.Context, req *rpcwire.AnalysisRequest) (*rpcwire.AnalysisResponse, error) {
	return s.dispatcher.Dispatch(ctx, req), nil
}

// BatchAnalyze dispatches req.Requests in input order, sending exactly
// len(req.Requests) responses. A per-item dispatch failure is sent as
// success=false without terminating the stream (spec §4.6, §8).
func (s *Server) BatchAnalyze(req *rpcwire.BatchAnalysisRequest, stream EngineBatchAnalyzeServer) error {
	ctx := stream.Context()
	for i := range req.Requests {
		item := req.Requests[i]
		resp := s.dispatcher.Dispatch(ctx, &item)
		if err := stream.Send(resp); err != nil {
			return err
		}
	}
	return nil
}

// HealthCheck reports the Engine's liveness and the algorithm-catalog
// capability summary. Per spec §4.6/§8 scenario 6, capabilities["native"]
// is always "available" and capabilities["alternate"] reflects the C3
// probe outcome.
func (s *Server) HealthCheck(ctx context.Context, _ *rpcwire.Empty) (*rpcwire.HealthResponse, error) {
	capabilities := map[string]string{
		"native":         "available",
		"uptime_seconds": strconv.FormatInt(int64(time.Since(s.startedAt).Seconds()), 10),
	}
	capabilities["alternate"] = s.bridge.State()
	if s.bridge.Available() {
		capabilities["alternate_version"] = bridge.Version()
	}
	return &rpcwire.HealthResponse{
		Healthy:      true,
		Version:      dispatch.ModuleVersion,
		Capabilities: capabilities,
	}, nil
}

// GetSupportedAlgorithms returns the Registry's full descriptor catalog.
func (s *Server) GetSupportedAlgorithms(ctx context.Context, _ *rpcwire.Empty) (*rpcwire.AlgorithmList, error) {
	list := s.registry.ListWire()
	return &list, nil
}
