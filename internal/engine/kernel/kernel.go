// Package kernel is the Native Algorithm Kernels (C2): pure functions
// computing each registry-listed statistic on a contiguous sequence of
// finite reals. Every kernel has the same contract —
// (data []float64, params map[string]string) → (json.RawMessage, *apperror.Error) —
// so the Dispatcher (C4) can call any of them uniformly.
package kernel

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/hctx/analytics-platform/pkg/apperror"
)

// Func is the shape every native kernel implements.
type Func func(data []float64, params map[string]string) (json.RawMessage, *apperror.Error)

// kernels is the fixed name→implementation table. Every name the
// registry's base catalog lists as native (other than generate_*,
// which belongs to internal/engine/generator) MUST have an entry here.
var kernels = map[string]Func{
	"mean":        wrap(meanOf),
	"median":      wrap(medianOf),
	"mode":        wrapMode,
	"std":         wrap(stdOf),
	"variance":    wrap(varianceOf),
	"min":         wrap(minOf),
	"max":         wrap(maxOf),
	"range":       wrap(rangeOf),
	"percentile":  wrapPercentile,
	"q1":          wrap(q1Of),
	"q3":          wrap(q3Of),
	"iqr":         wrap(iqrOf),
	"count":       wrapCount,
	"skewness":    wrap(skewnessOf),
	"kurtosis":    wrap(kurtosisOf),
	"correlation": wrap(correlationOf),
	"summary":     wrapSummary,
}

// Lookup returns the kernel function registered for name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := kernels[name]
	return f, ok
}

// Names returns every kernel name this package implements, for
// validating the registry's native catalog against actual coverage.
func Names() []string {
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scalarFunc computes a single float64 statistic, or an error.
type scalarFunc func(data []float64) (float64, *apperror.Error)

// wrap adapts a scalarFunc (which always requires non-empty data,
// except count which has its own wrapper) to the Func contract.
func wrap(f scalarFunc) Func {
	return func(data []float64, _ map[string]string) (json.RawMessage, *apperror.Error) {
		if len(data) == 0 {
			return nil, apperror.New(apperror.CodeEmptyData, "data must not be empty")
		}
		v, err := f(data)
		if err != nil {
			return nil, err
		}
		return marshal(v)
	}
}

func marshal(v any) (json.RawMessage, *apperror.Error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeNativeFailure, err, "failed to encode kernel result")
	}
	return b, nil
}

func meanOf(data []float64) (float64, *apperror.Error) {
	return mean(data), nil
}

func mean(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}

func medianOf(data []float64) (float64, *apperror.Error) {
	s := sortedCopy(data)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], nil
	}
	return (s[n/2-1] + s[n/2]) / 2, nil
}

func minOf(data []float64) (float64, *apperror.Error) {
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

func maxOf(data []float64) (float64, *apperror.Error) {
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

func rangeOf(data []float64) (float64, *apperror.Error) {
	mn, _ := minOf(data)
	mx, _ := maxOf(data)
	return mx - mn, nil
}

func varianceOf(data []float64) (float64, *apperror.Error) {
	if len(data) < 2 {
		return 0, apperror.New(apperror.CodeValidation, "variance requires at least 2 data points")
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(data)-1), nil
}

func stdOf(data []float64) (float64, *apperror.Error) {
	v, err := varianceOf(data)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// percentileValue does linear interpolation between the two nearest
// order statistics of the already-sorted slice s, for p in [0,100].
func percentileValue(s []float64, p float64) float64 {
	n := len(s)
	if n == 1 {
		return s[0]
	}
	rank := (p / 100) * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if lo == hi {
		return s[lo]
	}
	frac := rank - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo])
}

func parsePercentileParam(params map[string]string) (float64, *apperror.Error) {
	raw, ok := params["percentile"]
	if !ok || raw == "" {
		return 50, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Wrap(apperror.CodeValidation, err, "percentile param must be a number")
	}
	if p < 0 || p > 100 {
		return 0, apperror.New(apperror.CodeValidation, "percentile must be in [0,100], got %v", p)
	}
	return p, nil
}

func wrapPercentile(data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
	if len(data) == 0 {
		return nil, apperror.New(apperror.CodeEmptyData, "data must not be empty")
	}
	p, perr := parsePercentileParam(params)
	if perr != nil {
		return nil, perr
	}
	return marshal(percentileValue(sortedCopy(data), p))
}

func q1Of(data []float64) (float64, *apperror.Error) {
	return percentileValue(sortedCopy(data), 25), nil
}

func q3Of(data []float64) (float64, *apperror.Error) {
	return percentileValue(sortedCopy(data), 75), nil
}

func iqrOf(data []float64) (float64, *apperror.Error) {
	s := sortedCopy(data)
	return percentileValue(s, 75) - percentileValue(s, 25), nil
}

func skewnessOf(data []float64) (float64, *apperror.Error) {
	n := len(data)
	if n < 3 {
		return 0, apperror.New(apperror.CodeValidation, "skewness requires at least 3 data points")
	}
	m := mean(data)
	s, err := stdOf(data)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range data {
		z := (v - m) / s
		sum += z * z * z
	}
	nf := float64(n)
	return (nf / ((nf - 1) * (nf - 2))) * sum, nil
}

func kurtosisOf(data []float64) (float64, *apperror.Error) {
	n := len(data)
	if n < 4 {
		return 0, apperror.New(apperror.CodeValidation, "kurtosis requires at least 4 data points")
	}
	m := mean(data)
	s, err := stdOf(data)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range data {
		z := (v - m) / s
		sum += z * z * z * z
	}
	nf := float64(n)
	term1 := (nf * (nf + 1)) / ((nf - 1) * (nf - 2) * (nf - 3)) * sum
	term2 := (3 * (nf - 1) * (nf - 1)) / ((nf - 2) * (nf - 3))
	return term1 - term2, nil
}

func correlationOf(data []float64) (float64, *apperror.Error) {
	if len(data) < 2 {
		return 0, apperror.New(apperror.CodeValidation, "correlation requires at least 2 data points")
	}
	m := mean(data)
	num := 0.0
	den := 0.0
	for i := 0; i < len(data)-1; i++ {
		num += (data[i] - m) * (data[i+1] - m)
	}
	for _, v := range data {
		d := v - m
		den += d * d
	}
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// modeResult is the wire shape for the mode kernel.
type modeResult struct {
	Modes        []float64 `json:"modes"`
	Frequency    int       `json:"frequency"`
	IsMultimodal bool      `json:"is_multimodal"`
	DataSize     int       `json:"data_size"`
}

func wrapMode(data []float64, _ map[string]string) (json.RawMessage, *apperror.Error) {
	if len(data) == 0 {
		return nil, apperror.New(apperror.CodeEmptyData, "data must not be empty")
	}

	buckets := make(map[float64]int, len(data))
	order := make([]float64, 0, len(data))
	for _, v := range data {
		b := math.Round(v*1e6) / 1e6
		if _, seen := buckets[b]; !seen {
			order = append(order, b)
		}
		buckets[b]++
	}

	maxFreq := 0
	for _, f := range buckets {
		if f > maxFreq {
			maxFreq = f
		}
	}

	var modes []float64
	for _, b := range order {
		if buckets[b] == maxFreq {
			modes = append(modes, b)
		}
	}
	sort.Float64s(modes)

	return marshal(modeResult{
		Modes:        modes,
		Frequency:    maxFreq,
		IsMultimodal: len(modes) > 1,
		DataSize:     len(data),
	})
}

func wrapCount(data []float64, _ map[string]string) (json.RawMessage, *apperror.Error) {
	return marshal(len(data))
}

// summaryResult is the wire shape for the summary aggregate, matching
// the original Rust source's calculate_summary_stats key set exactly
// (see SPEC_FULL.md's supplemented-features section).
type summaryResult struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Autocorr float64 `json:"autocorr"`
}

func wrapSummary(data []float64, _ map[string]string) (json.RawMessage, *apperror.Error) {
	if len(data) == 0 {
		return nil, apperror.New(apperror.CodeEmptyData, "data must not be empty")
	}

	s := sortedCopy(data)
	result := summaryResult{
		Count: len(data),
		Mean:  mean(data),
		Min:   s[0],
		Max:   s[len(s)-1],
		Q25:   percentileValue(s, 25),
		Q75:   percentileValue(s, 75),
	}
	result.Range = result.Max - result.Min
	if med, err := medianOf(data); err == nil {
		result.Median = med
	}
	if len(data) >= 2 {
		if v, err := varianceOf(data); err == nil {
			result.Variance = v
			result.Std = math.Sqrt(v)
		}
		if c, err := correlationOf(data); err == nil {
			result.Autocorr = c
		}
	}
	return marshal(result)
}
