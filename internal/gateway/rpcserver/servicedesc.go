// Package rpcserver is the Gateway RPC Server (C9): it exposes the
// Statistics Composition Service (C8) over rpcwire.GatewayServiceName
// using connectrpc.com/connect, the teacher's own gateway-svc transport
// (services/gateway-svc/cmd/main.go, internal/handlers) — the only
// connect-go consumer anywhere in the retrieval pack.
//
// With no protoc/buf + protoc-gen-connect-go toolchain available, this
// file hand-writes the NewXxxServiceHandler(svc, opts...) (string,
// http.Handler) shape that generator would normally emit, using
// connect-go's own public handler constructors — the same rationale
// already used for internal/engine/rpcserver's hand-written
// grpc.ServiceDesc and for pkg/rpccodec's codec registration.
package rpcserver

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/hctx/analytics-platform/pkg/rpccodec"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// GatewayServer is the interface the Gateway RPC Server (C9) implements:
// the Statistics Composition Service's three entry points (spec §4.8),
// each wrapped in connect's Request/Response envelope.
type GatewayServer interface {
	GenerateRandomData(context.Context, *connect.Request[rpcwire.GenerateRandomDataRequest]) (*connect.Response[rpcwire.GenerateRandomDataResponse], error)
	CalculateStatistics(context.Context, *connect.Request[rpcwire.CalculateStatisticsRequest]) (*connect.Response[rpcwire.CalculateStatisticsResponse], error)
	ComprehensiveAnalysis(context.Context, *connect.Request[rpcwire.ComprehensiveAnalysisRequest]) (*connect.Response[rpcwire.ComprehensiveAnalysisResponse], error)
}

// NewGatewayServiceHandler builds the mux path and http.Handler for
// svc, equivalent to what protoc-gen-connect-go would emit for
// rpcwire.GatewayServiceName. opts are appended after the mandatory
// JSON wire codec so callers may still add interceptors etc.
func NewGatewayServiceHandler(svc GatewayServer, opts ...connect.HandlerOption) (string, http.Handler) {
	codecOpt := connect.WithCodec(rpccodec.Codec{})
	allOpts := append([]connect.HandlerOption{codecOpt}, opts...)

	mux := http.NewServeMux()

	mux.Handle(rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodGenerateRandomData), connect.NewUnaryHandler(
		rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodGenerateRandomData),
		svc.GenerateRandomData,
		allOpts...,
	))
	mux.Handle(rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodCalculateStatistics), connect.NewUnaryHandler(
		rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodCalculateStatistics),
		svc.CalculateStatistics,
		allOpts...,
	))
	mux.Handle(rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodComprehensiveAnalysis), connect.NewUnaryHandler(
		rpcwire.FullMethod(rpcwire.GatewayServiceName, rpcwire.MethodComprehensiveAnalysis),
		svc.ComprehensiveAnalysis,
		allOpts...,
	))

	return "/" + rpcwire.GatewayServiceName + "/", mux
}
