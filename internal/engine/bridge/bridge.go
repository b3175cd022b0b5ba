// Package bridge is the Alternate-Language Bridge (C3): it exposes the
// same algorithm contract as the Native Algorithm Kernels (C2) but
// executes in an embedded goja (pure-Go ECMAScript) interpreter,
// grounded on the r3e-network-service_layer TEE script engine's
// per-call goja.New() isolation pattern.
//
// The bridge is optional. Its availability is decided exactly once, at
// construction, by probing whether the embedded script actually
// defines every entry point it claims — never re-probed afterward
// (spec §4.3).
package bridge

import (
	"context"
	"encoding/json"

	"github.com/dop251/goja"

	"github.com/hctx/analytics-platform/pkg/apperror"
	"github.com/hctx/analytics-platform/pkg/logger"
)

// algorithmScript defines the bridge's statistics entry points in
// JavaScript: a subset of the native kernel set (mode, skewness,
// kurtosis and summary have no bridge version) plus one bridge-only
// addition, trimmed_mean.
const algorithmScript = `
function jsMean(data) {
	var sum = 0;
	for (var i = 0; i < data.length; i++) { sum += data[i]; }
	return sum / data.length;
}

function jsSorted(data) {
	var copy = data.slice();
	copy.sort(function(a, b) { return a - b; });
	return copy;
}

function jsMedian(data) {
	var s = jsSorted(data);
	var n = s.length;
	if (n % 2 === 1) { return s[(n - 1) / 2]; }
	return (s[n / 2 - 1] + s[n / 2]) / 2;
}

function jsPercentile(data, p) {
	var s = jsSorted(data);
	var n = s.length;
	if (n === 1) { return s[0]; }
	var rank = (p / 100) * (n - 1);
	var lo = Math.floor(rank);
	var hi = Math.ceil(rank);
	if (lo === hi) { return s[lo]; }
	var frac = rank - lo;
	return s[lo] + frac * (s[hi] - s[lo]);
}

function jsVariance(data) {
	var m = jsMean(data);
	var sumSq = 0;
	for (var i = 0; i < data.length; i++) {
		var d = data[i] - m;
		sumSq += d * d;
	}
	return sumSq / (data.length - 1);
}

function mean(data, params) { return jsMean(data); }
function median(data, params) { return jsMedian(data); }
function min(data, params) { return Math.min.apply(null, data); }
function max(data, params) { return Math.max.apply(null, data); }
function range(data, params) { return Math.max.apply(null, data) - Math.min.apply(null, data); }
function variance(data, params) { return jsVariance(data); }
function std(data, params) { return Math.sqrt(jsVariance(data)); }
function percentile(data, params) {
	var p = 50;
	if (params && params.percentile) { p = parseFloat(params.percentile); }
	return jsPercentile(data, p);
}
function q1(data, params) { return jsPercentile(data, 25); }
function q3(data, params) { return jsPercentile(data, 75); }
function iqr(data, params) { return jsPercentile(data, 75) - jsPercentile(data, 25); }
function count(data, params) { return data.length; }
function correlation(data, params) {
	var m = jsMean(data);
	var num = 0, den = 0;
	for (var i = 0; i < data.length - 1; i++) { num += (data[i] - m) * (data[i + 1] - m); }
	for (var i = 0; i < data.length; i++) { var d = data[i] - m; den += d * d; }
	if (den === 0) { return 0; }
	return num / den;
}

// trimmed_mean is bridge-only: drops the lowest and highest 10% of the
// sorted data before averaging. It has no native implementation.
function trimmed_mean(data, params) {
	var s = jsSorted(data);
	var trim = Math.floor(s.length * 0.1);
	var kept = s.slice(trim, s.length - trim);
	if (kept.length === 0) { kept = s; }
	return jsMean(kept);
}
`

// entryPoints is the fixed catalog of algorithm names algorithmScript
// defines. Probe resolves every one of these against a fresh runtime
// before declaring the bridge available.
var entryPoints = []string{
	"mean", "median", "min", "max", "range", "variance", "std",
	"percentile", "q1", "q3", "iqr", "count", "correlation", "trimmed_mean",
}

// Bridge runs algorithm calls against an embedded goja interpreter.
// Each call gets its own goja.Runtime for isolation; calls are bounded
// by a semaphore so they never pile up past the configured concurrency.
type Bridge struct {
	available bool
	disabled  bool
	sem       chan struct{}
}

// Disabled returns a Bridge that reports Available() == false without
// running the startup probe, for when BridgeConfig.Enabled is false.
func Disabled() *Bridge {
	return &Bridge{disabled: true}
}

// Probe constructs a Bridge and runs its one-time startup probe:
// compiling algorithmScript and asserting every entryPoints name
// resolves to a callable function. maxConcurrency bounds how many
// script calls may run at once; values <= 0 default to 4.
func Probe(maxConcurrency int) *Bridge {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	b := &Bridge{sem: make(chan struct{}, maxConcurrency)}

	vm := goja.New()
	if _, err := vm.RunString(algorithmScript); err != nil {
		logger.Log.Warn("alternate-language bridge probe failed: script did not compile", "error", err)
		return b
	}
	for _, name := range entryPoints {
		if _, ok := goja.AssertFunction(vm.Get(name)); !ok {
			logger.Log.Warn("alternate-language bridge probe failed: missing entry point", "entry_point", name)
			return b
		}
	}

	b.available = true
	logger.Log.Info("alternate-language bridge available", "entry_points", len(entryPoints))
	return b
}

// Available reports the cached result of the startup probe.
func (b *Bridge) Available() bool {
	return b != nil && b.available
}

// State reports the bridge's HealthCheck capability string: "available"
// once probed successfully, "disabled" when BridgeConfig.Enabled was
// false, or "unavailable" when the startup probe ran and failed (spec
// §4.6/§8 scenario 6: capabilities["alternate"] ∈
// {"available","disabled","unavailable"}).
func (b *Bridge) State() string {
	switch {
	case b.Available():
		return "available"
	case b == nil || b.disabled:
		return "disabled"
	default:
		return "unavailable"
	}
}

// EntryPoints returns the algorithm names the bridge offers, for the
// Registry to merge into its catalog.
func (b *Bridge) EntryPoints() []string {
	if !b.Available() {
		return nil
	}
	out := make([]string, len(entryPoints))
	copy(out, entryPoints)
	return out
}

// Execute runs algorithm against a fresh goja runtime, bounded by the
// bridge's concurrency semaphore and ctx. It never runs on the RPC
// event loop goroutine; callers invoke it from the Dispatcher, which
// already runs off a request-scoped goroutine.
func (b *Bridge) Execute(ctx context.Context, algorithm string, data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
	if !b.Available() {
		return nil, apperror.New(apperror.CodeNotImplemented, "alternate-language bridge is not available")
	}

	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, apperror.Wrap(apperror.CodeTimeout, ctx.Err(), "bridge call did not acquire a worker in time")
	}
	defer func() { <-b.sem }()

	type outcome struct {
		raw json.RawMessage
		err *apperror.Error
	}
	done := make(chan outcome, 1)

	go func() {
		done <- b.run(algorithm, data, params)
	}()

	select {
	case o := <-done:
		return o.raw, o.err
	case <-ctx.Done():
		return nil, apperror.Wrap(apperror.CodeTimeout, ctx.Err(), "bridge call exceeded its deadline")
	}
}

func (b *Bridge) run(algorithm string, data []float64, params map[string]string) (raw json.RawMessage, appErr *apperror.Error) {
	defer func() {
		if r := recover(); r != nil {
			appErr = apperror.New(apperror.CodeAlternateFailure, "bridge script panicked: %v", r)
		}
	}()

	vm := goja.New()
	if _, err := vm.RunString(algorithmScript); err != nil {
		return nil, apperror.Wrap(apperror.CodeAlternateFailure, err, "failed to load bridge script")
	}

	entryPoint, ok := goja.AssertFunction(vm.Get(algorithm))
	if !ok {
		return nil, apperror.New(apperror.CodeNotImplemented, "bridge has no entry point %q", algorithm)
	}

	result, err := entryPoint(goja.Undefined(), vm.ToValue(data), vm.ToValue(params))
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeAlternateFailure, err, "bridge execution of %q failed", algorithm)
	}

	exported := result.Export()
	b2, err := json.Marshal(exported)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeAlternateFailure, err, "failed to encode bridge result for %q", algorithm)
	}
	return b2, nil
}

// Version reports the embedded interpreter's identifying string,
// stamped into ExecutionMetadata.Stats["alternate_version"] the way
// the original Rust source stamps rust_version (SPEC_FULL.md's
// supplemented-features section).
func Version() string {
	return "goja/ecmascript5.1"
}
