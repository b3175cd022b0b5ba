package rpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// EngineServer is the interface the Engine RPC Server (C6) implements:
// Analyze, BatchAnalyze (server-streaming), HealthCheck and
// GetSupportedAlgorithms, per spec §4.6.
//
// With no protoc/buf toolchain available to generate the usual
// *_grpc.pb.go, this file and the handlers below hand-write the same
// grpc.ServiceDesc shape protoc-gen-go-grpc would have produced,
// reusing grpc-go's own registration extension points (the same
// rationale as pkg/rpccodec's codec registration).
type EngineServer interface {
	Analyze(ctx context.Context, req *rpcwire.AnalysisRequest) (*rpcwire.AnalysisResponse, error)
	BatchAnalyze(req *rpcwire.BatchAnalysisRequest, stream EngineBatchAnalyzeServer) error
	HealthCheck(ctx context.Context, req *rpcwire.Empty) (*rpcwire.HealthResponse, error)
	GetSupportedAlgorithms(ctx context.Context, req *rpcwire.Empty) (*rpcwire.AlgorithmList, error)
}

// EngineBatchAnalyzeServer is the server-side stream handle BatchAnalyze
// sends responses through.
type EngineBatchAnalyzeServer interface {
	Send(*rpcwire.AnalysisResponse) error
	grpc.ServerStream
}

type engineBatchAnalyzeServer struct {
	grpc.ServerStream
}

func (x *engineBatchAnalyzeServer) Send(resp *rpcwire.AnalysisResponse) error {
	return x.ServerStream.SendMsg(resp)
}

func engineAnalyzeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(rpcwire.AnalysisRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodAnalyze)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Analyze(ctx, req.(*rpcwire.AnalysisRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func engineHealthCheckHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(rpcwire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodHealthCheck)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).HealthCheck(ctx, req.(*rpcwire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func engineGetSupportedAlgorithmsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(rpcwire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).GetSupportedAlgorithms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpcwire.FullMethod(rpcwire.EngineServiceName, rpcwire.MethodGetSupportedAlgorithms)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).GetSupportedAlgorithms(ctx, req.(*rpcwire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func engineBatchAnalyzeHandler(srv any, stream grpc.ServerStream) error {
	m := new(rpcwire.BatchAnalysisRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(EngineServer).BatchAnalyze(m, &engineBatchAnalyzeServer{stream})
}

// ServiceDesc is the Engine service's grpc.ServiceDesc, equivalent to
// what protoc-gen-go-grpc would emit for rpcwire.EngineServiceName.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: rpcwire.EngineServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: rpcwire.MethodAnalyze, Handler: engineAnalyzeHandler},
		{MethodName: rpcwire.MethodHealthCheck, Handler: engineHealthCheckHandler},
		{MethodName: rpcwire.MethodGetSupportedAlgorithms, Handler: engineGetSupportedAlgorithmsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: rpcwire.MethodBatchAnalyze, Handler: engineBatchAnalyzeHandler, ServerStreams: true},
	},
	Metadata: "analytics/engine/v1/engine.proto",
}

// RegisterEngineServer registers srv on s using ServiceDesc.
func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&ServiceDesc, srv)
}
