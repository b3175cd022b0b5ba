package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/hctx/analytics-platform/pkg/logger"
	"github.com/hctx/analytics-platform/pkg/observability"
)

// ObservabilityConfig configures ObservabilityInterceptor.
type ObservabilityConfig struct {
	ServiceName    string
	ExcludeMethods map[string]bool
	Sink           observability.Sink
}

// ObservabilityInterceptor emits one observability.Entry per completed
// unary call through the configured Sink — the ObservabilitySink
// collaborator named in spec §6, wired at the transport edge so every
// RPC (not only Dispatcher attempts) is observable.
func ObservabilityInterceptor(cfg *ObservabilityConfig) grpc.UnaryServerInterceptor {
	if cfg.Sink == nil {
		cfg.Sink = observability.Get()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if cfg.ExcludeMethods != nil && cfg.ExcludeMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		start := time.Now()
		clientAddr := extractClientAddr(ctx)
		requestID := extractRequestID(ctx)

		resp, err := handler(ctx, req)
		duration := time.Since(start)

		outcome := observability.OutcomeSuccess
		level := "info"
		fields := map[string]any{
			"service":     cfg.ServiceName,
			"method":      info.FullMethod,
			"client_addr": clientAddr,
			"request_id":  requestID,
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
		}
		if err != nil {
			st, _ := status.FromError(err)
			outcome = observability.OutcomeFailure
			level = "warn"
			fields["error_code"] = st.Code().String()
			fields["error_message"] = st.Message()
		}
		fields["outcome"] = string(outcome)

		entry := &observability.Entry{
			Timestamp: start,
			Level:     level,
			Component: "rpc",
			Message:   info.FullMethod,
			Fields:    fields,
		}

		go func() {
			if logErr := cfg.Sink.Log(context.Background(), entry); logErr != nil {
				logger.Log.Warn("failed to write observability entry", "error", logErr)
			}
		}()

		return resp, err
	}
}

// StreamObservabilityInterceptor is the streaming counterpart of ObservabilityInterceptor.
func StreamObservabilityInterceptor(cfg *ObservabilityConfig) grpc.StreamServerInterceptor {
	if cfg.Sink == nil {
		cfg.Sink = observability.Get()
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if cfg.ExcludeMethods != nil && cfg.ExcludeMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		start := time.Now()
		ctx := ss.Context()
		clientAddr := extractClientAddr(ctx)
		requestID := extractRequestID(ctx)

		err := handler(srv, ss)
		duration := time.Since(start)

		outcome := observability.OutcomeSuccess
		level := "info"
		fields := map[string]any{
			"service":     cfg.ServiceName,
			"method":      info.FullMethod,
			"client_addr": clientAddr,
			"request_id":  requestID,
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
			"stream":      true,
		}
		if err != nil {
			st, _ := status.FromError(err)
			outcome = observability.OutcomeFailure
			level = "warn"
			fields["error_code"] = st.Code().String()
			fields["error_message"] = st.Message()
		}
		fields["outcome"] = string(outcome)

		entry := &observability.Entry{
			Timestamp: start,
			Level:     level,
			Component: "rpc",
			Message:   info.FullMethod,
			Fields:    fields,
		}

		go func() {
			if logErr := cfg.Sink.Log(context.Background(), entry); logErr != nil {
				logger.Log.Warn("failed to write observability entry", "error", logErr)
			}
		}()

		return err
	}
}

func extractClientAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok {
		return p.Addr.String()
	}
	return "unknown"
}

func extractRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if rid := md.Get("x-request-id"); len(rid) > 0 {
			return rid[0]
		}
	}
	return ""
}
