package interceptors

import (
	"google.golang.org/grpc"

	"github.com/hctx/analytics-platform/pkg/observability"
	"github.com/hctx/analytics-platform/pkg/ratelimit"
	"github.com/hctx/analytics-platform/pkg/telemetry"
)

// ServerConfig configures the interceptor chain assembled by
// UnaryServerInterceptors / StreamServerInterceptors.
type ServerConfig struct {
	ServiceName          string
	EnableTracing        bool
	EnableObservability  bool
	RateLimiter          ratelimit.Limiter
	ObservabilitySink    observability.Sink
	ObservabilityExclude map[string]bool
	KeyExtractor         ratelimit.KeyExtractor
}

// UnaryServerInterceptors assembles the unary interceptor chain:
// recovery, rate limiting, tracing, metrics, logging, validation,
// observability (last, so it sees the final outcome).
func UnaryServerInterceptors(cfg *ServerConfig) grpc.UnaryServerInterceptor {
	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
	}

	if cfg.RateLimiter != nil {
		interceptors = append(interceptors, RateLimitInterceptor(cfg.RateLimiter, cfg.KeyExtractor))
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.UnaryServerInterceptor())
	}

	interceptors = append(interceptors, MetricsInterceptor(cfg.ServiceName))
	interceptors = append(interceptors, LoggingInterceptor())
	interceptors = append(interceptors, ValidationInterceptor())

	if cfg.EnableObservability && cfg.ObservabilitySink != nil {
		interceptors = append(interceptors, ObservabilityInterceptor(&ObservabilityConfig{
			ServiceName:    cfg.ServiceName,
			ExcludeMethods: cfg.ObservabilityExclude,
			Sink:           cfg.ObservabilitySink,
		}))
	}

	return chainUnaryInterceptors(interceptors...)
}

// StreamServerInterceptors assembles the streaming counterpart of
// UnaryServerInterceptors.
func StreamServerInterceptors(cfg *ServerConfig) grpc.StreamServerInterceptor {
	interceptors := []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
	}

	if cfg.RateLimiter != nil {
		interceptors = append(interceptors, StreamRateLimitInterceptor(cfg.RateLimiter, cfg.KeyExtractor))
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.StreamServerInterceptor())
	}

	interceptors = append(interceptors,
		StreamMetricsInterceptor(cfg.ServiceName),
		StreamLoggingInterceptor(),
	)

	if cfg.EnableObservability && cfg.ObservabilitySink != nil {
		interceptors = append(interceptors, StreamObservabilityInterceptor(&ObservabilityConfig{
			ServiceName:    cfg.ServiceName,
			ExcludeMethods: cfg.ObservabilityExclude,
			Sink:           cfg.ObservabilitySink,
		}))
	}

	return chainStreamInterceptors(interceptors...)
}
