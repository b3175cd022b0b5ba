// Package generator is the Deterministic Data Generator (C5): given a
// distribution, count, and seed, it produces a sequence<f64> that is
// byte-identical across runs on the same platform build for identical
// inputs (spec §4.5). It never reads request data — only params.
package generator

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/hctx/analytics-platform/pkg/apperror"
)

const (
	minCount = 1
	maxCount = 1_000_000
)

// Func generates a sequence for one distribution. It takes no data
// argument and reads all of its parameters from params.
type Func func(params map[string]string) (json.RawMessage, *apperror.Error)

var generators = map[string]Func{
	"generate_uniform":     generateUniform,
	"generate_normal":      generateNormal,
	"generate_exponential": generateExponential,
}

// Lookup returns the generator registered for name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := generators[name]
	return f, ok
}

func parseCount(params map[string]string) (int, *apperror.Error) {
	raw, ok := params["count"]
	if !ok {
		return 0, apperror.New(apperror.CodeValidation, "count is required")
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Wrap(apperror.CodeValidation, err, "count must be an integer")
	}
	if count < minCount || count > maxCount {
		return 0, apperror.New(apperror.CodeValidation, "count must be in [%d,%d], got %d", minCount, maxCount, count)
	}
	return count, nil
}

func parseSeed(params map[string]string) (uint64, *apperror.Error) {
	raw, ok := params["seed"]
	if !ok {
		return 0, apperror.New(apperror.CodeValidation, "seed is required")
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperror.Wrap(apperror.CodeValidation, err, "seed must be an unsigned integer")
	}
	return seed, nil
}

func parseFloatParam(params map[string]string, key string) (float64, *apperror.Error) {
	raw, ok := params[key]
	if !ok {
		return 0, apperror.New(apperror.CodeValidation, "%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Wrap(apperror.CodeValidation, err, "%s must be a number", key)
	}
	return v, nil
}

func marshal(data []float64) (json.RawMessage, *apperror.Error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeNativeFailure, err, "failed to encode generated sequence")
	}
	return b, nil
}

func generateUniform(params map[string]string) (json.RawMessage, *apperror.Error) {
	count, err := parseCount(params)
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed(params)
	if err != nil {
		return nil, err
	}
	min, err := parseFloatParam(params, "min")
	if err != nil {
		return nil, err
	}
	max, err := parseFloatParam(params, "max")
	if err != nil {
		return nil, err
	}
	if min >= max {
		return nil, apperror.New(apperror.CodeValidation, "min must be < max, got min=%v max=%v", min, max)
	}

	rng := newPCG32(seed)
	out := make([]float64, count)
	for i := range out {
		out[i] = min + rng.nextFloat64()*(max-min)
	}
	return marshal(out)
}

func generateNormal(params map[string]string) (json.RawMessage, *apperror.Error) {
	count, err := parseCount(params)
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed(params)
	if err != nil {
		return nil, err
	}
	mean, err := parseFloatParam(params, "mean")
	if err != nil {
		return nil, err
	}
	stdDev, err := parseFloatParam(params, "std_dev")
	if err != nil {
		return nil, err
	}
	if stdDev <= 0 {
		return nil, apperror.New(apperror.CodeValidation, "std_dev must be > 0, got %v", stdDev)
	}

	rng := newPCG32(seed)
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = mean + stdDev*rng.nextBoxMuller()
	}
	return marshal(out)
}

func generateExponential(params map[string]string) (json.RawMessage, *apperror.Error) {
	count, err := parseCount(params)
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed(params)
	if err != nil {
		return nil, err
	}
	lambda, err := parseFloatParam(params, "lambda")
	if err != nil {
		return nil, err
	}
	if lambda <= 0 {
		return nil, apperror.New(apperror.CodeValidation, "lambda must be > 0, got %v", lambda)
	}

	rng := newPCG32(seed)
	out := make([]float64, count)
	for i := range out {
		u := rng.nextFloat64()
		// inverse-CDF; u < 1 keeps log(1-u) finite, and redrawing u == 0
		// keeps every sample strictly positive.
		for u == 0 {
			u = rng.nextFloat64()
		}
		out[i] = -math.Log(1-u) / lambda
	}
	return marshal(out)
}
