// Package dispatch is the Intelligent Dispatcher (C4): for one request
// it resolves which implementations are available, tries them in
// preference order within an effective deadline, and falls back
// silently on failure — only the final metadata.implementation reveals
// which candidate actually ran. The Dispatcher carries no state
// between requests; concurrent requests are fully independent.
package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hctx/analytics-platform/internal/engine/bridge"
	"github.com/hctx/analytics-platform/internal/engine/generator"
	"github.com/hctx/analytics-platform/internal/engine/kernel"
	"github.com/hctx/analytics-platform/internal/engine/registry"
	"github.com/hctx/analytics-platform/pkg/apperror"
	"github.com/hctx/analytics-platform/pkg/metrics"
	"github.com/hctx/analytics-platform/pkg/observability"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// defaultTimeout is the effective_timeout spec §4.4 falls back to when
// options.timeout_ms is unset or non-positive.
const defaultTimeout = 30 * time.Second

// ModuleVersion is stamped into ExecutionMetadata.Stats["native_version"]
// and reported by HealthCheck, mirroring the original Rust source's
// rust_version stamp (SPEC_FULL.md's supplemented-features section).
const ModuleVersion = "analytics-platform/engine-v1"

// Dispatcher implements the Dispatcher contract (C4) against a
// Registry (C1), the native kernels (C2) and generators (C5), and an
// optional Alternate-Language Bridge (C3).
type Dispatcher struct {
	registry *registry.Registry
	bridge   *bridge.Bridge
	sink     observability.Sink

	// nativeExec, when set, replaces the real kernel.Lookup/generator.Lookup
	// dispatch for the native candidate. Production Dispatchers built via
	// New leave this nil; tests use it to stub a slow kernel without
	// reaching into the fixed kernel/generator tables (internal/engine/dispatch/dispatch_test.go).
	nativeExec func(ctx context.Context, algorithm string, data []float64, params map[string]string) (json.RawMessage, *apperror.Error)
}

// New builds a Dispatcher. sink may be nil, in which case the global
// observability sink (observability.Get()) is used per attempt.
func New(reg *registry.Registry, br *bridge.Bridge, sink observability.Sink) *Dispatcher {
	return &Dispatcher{registry: reg, bridge: br, sink: sink}
}

type candidate struct {
	name    string // "native" or "alternate"
	execute func(ctx context.Context, data []float64, params map[string]string) (json.RawMessage, *apperror.Error)
}

func (d *Dispatcher) nativeCandidate(algorithm string) candidate {
	return candidate{
		name: "native",
		execute: func(ctx context.Context, data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
			if d.nativeExec != nil {
				return d.nativeExec(ctx, algorithm, data, params)
			}
			if strings.HasPrefix(algorithm, "generate_") {
				f, ok := generator.Lookup(algorithm)
				if !ok {
					return nil, apperror.New(apperror.CodeNotImplemented, "no native generator for %q", algorithm)
				}
				return f(params)
			}
			f, ok := kernel.Lookup(algorithm)
			if !ok {
				return nil, apperror.New(apperror.CodeNotImplemented, "no native kernel for %q", algorithm)
			}
			return f(data, params)
		},
	}
}

func (d *Dispatcher) alternateCandidate(algorithm string) candidate {
	return candidate{
		name: "alternate",
		execute: func(ctx context.Context, data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
			return d.bridge.Execute(ctx, algorithm, data, params)
		},
	}
}

// buildCandidates implements spec §4.4's candidate-ordering rules
// exactly.
func (d *Dispatcher) buildCandidates(algorithm string, impls []string, opts rpcwire.AnalysisOptions) []candidate {
	hasNative := contains(impls, "native")
	hasAlternate := contains(impls, "alternate")

	var candidates []candidate
	switch {
	case opts.PreferNative && hasNative:
		candidates = append(candidates, d.nativeCandidate(algorithm))
		if opts.AllowAlternate && hasAlternate {
			candidates = append(candidates, d.alternateCandidate(algorithm))
		}
	case opts.AllowAlternate && hasAlternate:
		candidates = append(candidates, d.alternateCandidate(algorithm))
		if hasNative {
			candidates = append(candidates, d.nativeCandidate(algorithm))
		}
	case hasNative:
		// allow_alternate is false here (else the branch above would
		// have matched), so native is the only eligible candidate.
		candidates = append(candidates, d.nativeCandidate(algorithm))
	}
	return candidates
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func effectiveTimeout(opts rpcwire.AnalysisOptions) time.Duration {
	if opts.TimeoutMs > 0 {
		return time.Duration(opts.TimeoutMs) * time.Millisecond
	}
	return defaultTimeout
}

// candidateOutcome carries one candidate.execute result across the
// goroutine boundary runCandidate introduces.
type candidateOutcome struct {
	raw json.RawMessage
	err *apperror.Error
}

// runCandidate races c.execute against ctx, mirroring bridge.Execute's
// own ctx-vs-done select (internal/engine/bridge/bridge.go). A native
// kernel call ignores its ctx argument and can run arbitrarily long, so
// without this race a slow kernel would block Dispatch past the
// candidate's deadline instead of the deadline being honored (spec
// §8: "a kernel stubbed to sleep 5s with options.timeout_ms=100 returns
// Timeout in < 500 ms wall clock"). The abandoned goroutine keeps
// running until the kernel call itself returns; it does not leak past
// that point.
func runCandidate(ctx context.Context, c candidate, data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
	done := make(chan candidateOutcome, 1)
	go func() {
		raw, err := c.execute(ctx, data, params)
		done <- candidateOutcome{raw: raw, err: err}
	}()

	select {
	case o := <-done:
		return o.raw, o.err
	case <-ctx.Done():
		return nil, nil
	}
}

func (d *Dispatcher) sinkOrGlobal() observability.Sink {
	if d.sink != nil {
		return d.sink
	}
	return observability.Get()
}

// Dispatch executes one AnalysisRequest via the full selection
// algorithm of spec §4.4, returning a response that is always
// success=true or success=false. Dispatch has no error return: an
// unknown algorithm, a validation failure, a timeout or a failed
// implementation is reported in the response envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req *rpcwire.AnalysisRequest) *rpcwire.AnalysisResponse {
	impls := d.registry.Implementations(req.Algorithm)
	if len(impls) == 0 {
		return failureResponse(req, apperror.New(apperror.CodeNotImplemented, "unknown algorithm %q", req.Algorithm))
	}

	candidates := d.buildCandidates(req.Algorithm, impls, req.Options)
	if len(candidates) == 0 {
		return failureResponse(req, apperror.New(apperror.CodeNotImplemented, "no candidate implementation matches the request's options mask for %q", req.Algorithm))
	}

	timeout := effectiveTimeout(req.Options)
	var lastErr *apperror.Error

	for i, c := range candidates {
		if i > 0 {
			metrics.Get().RecordDispatchFallback(req.Algorithm)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		raw, err := runCandidate(attemptCtx, c, req.Data, req.Params)
		elapsed := time.Since(start)
		cancel()

		if attemptCtx.Err() == context.DeadlineExceeded && err == nil {
			err = apperror.New(apperror.CodeTimeout, "candidate %s timed out after %s", c.name, timeout)
		}

		outcome := observability.OutcomeSuccess
		if err != nil {
			outcome = observability.OutcomeFailure
			if err.Code == apperror.CodeTimeout {
				outcome = observability.OutcomeTimeout
			}
		}
		d.sinkOrGlobal().Log(ctx, observability.DispatchAttempt(req.RequestID, req.Algorithm, c.name, elapsed, outcome))
		metrics.Get().RecordDispatchAttempt(req.Algorithm, c.name, string(outcome), elapsed)

		if err == nil {
			return successResponse(req, c.name, elapsed, raw)
		}
		lastErr = err
	}

	return failureResponse(req, lastErr)
}

func successResponse(req *rpcwire.AnalysisRequest, implementation string, elapsed time.Duration, raw json.RawMessage) *rpcwire.AnalysisResponse {
	versionKey := "native_version"
	versionVal := ModuleVersion
	if implementation == "alternate" {
		versionKey = "alternate_version"
		versionVal = bridge.Version()
	}

	return &rpcwire.AnalysisResponse{
		RequestID:  req.RequestID,
		Success:    true,
		ResultJSON: string(raw),
		Metadata: &rpcwire.ExecutionMetadata{
			Implementation:  implementation,
			ExecutionTimeMs: float64(elapsed.Microseconds()) / 1000.0,
			Algorithm:       req.Algorithm,
			DataSize:        int32(len(req.Data)),
			Stats:           map[string]string{versionKey: versionVal},
		},
	}
}

func failureResponse(req *rpcwire.AnalysisRequest, err *apperror.Error) *rpcwire.AnalysisResponse {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &rpcwire.AnalysisResponse{
		RequestID:    req.RequestID,
		Success:      false,
		ErrorMessage: msg,
	}
}
