package rpcserver

import (
	"context"

	"connectrpc.com/connect"

	"github.com/hctx/analytics-platform/internal/gateway/statistics"
	"github.com/hctx/analytics-platform/pkg/apperror"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// Server implements GatewayServer against the Statistics Composition
// Service (C8).
type Server struct {
	stats *statistics.Service
}

// New builds a Gateway RPC Server from its one collaborator.
func New(stats *statistics.Service) *Server {
	return &Server{stats: stats}
}

// GenerateRandomData wraps statistics.Service.GenerateData in connect's
// Request/Response envelope.
func (s *Server) GenerateRandomData(ctx context.Context, req *connect.Request[rpcwire.GenerateRandomDataRequest]) (*connect.Response[rpcwire.GenerateRandomDataResponse], error) {
	resp, err := s.stats.GenerateData(ctx, req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(resp), nil
}

// CalculateStatistics wraps statistics.Service.Calculate.
func (s *Server) CalculateStatistics(ctx context.Context, req *connect.Request[rpcwire.CalculateStatisticsRequest]) (*connect.Response[rpcwire.CalculateStatisticsResponse], error) {
	resp, err := s.stats.Calculate(ctx, req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(resp), nil
}

// ComprehensiveAnalysis wraps statistics.Service.Comprehensive. Per spec
// §4.10 the composition's own success/error fields carry algorithm-level
// failure, so this handler always returns the composition's response
// with a nil error.
func (s *Server) ComprehensiveAnalysis(ctx context.Context, req *connect.Request[rpcwire.ComprehensiveAnalysisRequest]) (*connect.Response[rpcwire.ComprehensiveAnalysisResponse], error) {
	resp := s.stats.Comprehensive(ctx, req.Msg)
	return connect.NewResponse(resp), nil
}

// connectError maps an *apperror.Error onto the nearest connect.Code,
// mirroring apperror.Error.GRPCStatus's gRPC mapping (spec §7's error
// taxonomy is transport-agnostic).
func connectError(err *apperror.Error) error {
	var code connect.Code
	switch err.Code {
	case apperror.CodeValidation, apperror.CodeEmptyData:
		code = connect.CodeInvalidArgument
	case apperror.CodeNotImplemented:
		code = connect.CodeUnimplemented
	case apperror.CodeTimeout:
		code = connect.CodeDeadlineExceeded
	case apperror.CodeTransport:
		code = connect.CodeUnavailable
	case apperror.CodeAlternateFailure, apperror.CodeNativeFailure:
		code = connect.CodeInternal
	default:
		code = connect.CodeUnknown
	}
	return connect.NewError(code, err)
}
