package kernel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/hctx/analytics-platform/pkg/apperror"
)

func run(t *testing.T, name string, data []float64, params map[string]string) (json.RawMessage, *apperror.Error) {
	t.Helper()
	f, ok := Lookup(name)
	if !ok {
		t.Fatalf("kernel %q not registered", name)
	}
	return f(data, params)
}

func runScalar(t *testing.T, name string, data []float64, params map[string]string) float64 {
	t.Helper()
	raw, err := run(t, name, data, params)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	var v float64
	if jsonErr := json.Unmarshal(raw, &v); jsonErr != nil {
		t.Fatalf("%s: result not a scalar: %v", name, jsonErr)
	}
	return v
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	got := runScalar(t, "mean", []float64{1, 2, 3, 4, 5}, nil)
	if !approxEqual(got, 3) {
		t.Errorf("mean = %v, want 3", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runScalar(t, "median", tt.data, nil)
			if !approxEqual(got, tt.want) {
				t.Errorf("median = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariance_RequiresTwoPoints(t *testing.T) {
	_, err := run(t, "variance", []float64{1}, nil)
	if err == nil {
		t.Fatal("expected error for n<2")
	}
	if err.Code != apperror.CodeValidation {
		t.Errorf("Code = %v, want %v", err.Code, apperror.CodeValidation)
	}
}

func TestVariance_SampleFormula(t *testing.T) {
	// data: 2,4,4,4,5,5,7,9 — well-known example, sample variance = 4.571428...
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := runScalar(t, "variance", data, nil)
	want := 32.0 / 7.0
	if !approxEqual(got, want) {
		t.Errorf("variance = %v, want %v", got, want)
	}
}

func TestStd(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := runScalar(t, "std", data, nil)
	want := math.Sqrt(32.0 / 7.0)
	if !approxEqual(got, want) {
		t.Errorf("std = %v, want %v", got, want)
	}
}

func TestMinMaxRange(t *testing.T) {
	data := []float64{5, -3, 10, 0}
	if got := runScalar(t, "min", data, nil); got != -3 {
		t.Errorf("min = %v, want -3", got)
	}
	if got := runScalar(t, "max", data, nil); got != 10 {
		t.Errorf("max = %v, want 10", got)
	}
	if got := runScalar(t, "range", data, nil); got != 13 {
		t.Errorf("range = %v, want 13", got)
	}
}

func TestPercentile_DefaultsTo50(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	got := runScalar(t, "percentile", data, nil)
	if !approxEqual(got, 3) {
		t.Errorf("percentile default = %v, want 3 (median)", got)
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	got := runScalar(t, "percentile", data, map[string]string{"percentile": "25"})
	want := 1.75
	if !approxEqual(got, want) {
		t.Errorf("percentile(25) = %v, want %v", got, want)
	}
}

func TestPercentile_OutOfRange(t *testing.T) {
	_, err := run(t, "percentile", []float64{1, 2, 3}, map[string]string{"percentile": "150"})
	if err == nil {
		t.Fatal("expected validation error for percentile > 100")
	}
}

func TestQ1Q3IQR(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	q1 := runScalar(t, "q1", data, nil)
	q3 := runScalar(t, "q3", data, nil)
	iqr := runScalar(t, "iqr", data, nil)
	if !approxEqual(iqr, q3-q1) {
		t.Errorf("iqr = %v, want q3-q1 = %v", iqr, q3-q1)
	}
}

func TestCount_EmptyReturnsZero(t *testing.T) {
	got := runScalar(t, "count", nil, nil)
	if got != 0 {
		t.Errorf("count([]) = %v, want 0", got)
	}
}

func TestCount_NonEmpty(t *testing.T) {
	got := runScalar(t, "count", []float64{1, 2, 3}, nil)
	if got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}

func TestEmptyData_FailsExceptCount(t *testing.T) {
	for _, name := range []string{"mean", "median", "mode", "std", "variance", "min", "max", "range", "percentile", "q1", "q3", "iqr", "skewness", "kurtosis", "correlation", "summary"} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, name, nil, nil)
			if err == nil {
				t.Fatalf("%s: expected EmptyData error on empty input", name)
			}
			if err.Code != apperror.CodeEmptyData {
				t.Errorf("%s: Code = %v, want %v", name, err.Code, apperror.CodeEmptyData)
			}
		})
	}
}

func TestSkewness_RequiresThreePoints(t *testing.T) {
	_, err := run(t, "skewness", []float64{1, 2}, nil)
	if err == nil || err.Code != apperror.CodeValidation {
		t.Fatal("expected validation error for n<3")
	}
}

func TestKurtosis_RequiresFourPoints(t *testing.T) {
	_, err := run(t, "kurtosis", []float64{1, 2, 3}, nil)
	if err == nil || err.Code != apperror.CodeValidation {
		t.Fatal("expected validation error for n<4")
	}
}

func TestCorrelation_ZeroDenominator(t *testing.T) {
	// constant sequence -> zero variance -> correlation defined as 0
	got := runScalar(t, "correlation", []float64{5, 5, 5, 5}, nil)
	if got != 0 {
		t.Errorf("correlation = %v, want 0", got)
	}
}

func TestMode_Multimodal(t *testing.T) {
	raw, err := run(t, "mode", []float64{1, 1, 2, 2, 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result struct {
		Modes        []float64 `json:"modes"`
		Frequency    int       `json:"frequency"`
		IsMultimodal bool      `json:"is_multimodal"`
		DataSize     int       `json:"data_size"`
	}
	if jsonErr := json.Unmarshal(raw, &result); jsonErr != nil {
		t.Fatalf("failed to unmarshal mode result: %v", jsonErr)
	}
	if !result.IsMultimodal {
		t.Error("expected is_multimodal=true")
	}
	if result.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", result.Frequency)
	}
	if len(result.Modes) != 2 {
		t.Errorf("Modes = %v, want 2 entries", result.Modes)
	}
	if result.DataSize != 5 {
		t.Errorf("DataSize = %d, want 5", result.DataSize)
	}
}

func TestMode_BucketsByRounding(t *testing.T) {
	raw, err := run(t, "mode", []float64{1.0000001, 1.0000002, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result struct {
		Modes []float64 `json:"modes"`
	}
	json.Unmarshal(raw, &result)
	if len(result.Modes) != 1 || !approxEqual(result.Modes[0], 1.000000) {
		t.Errorf("expected values within 1e-6 to bucket together, got %v", result.Modes)
	}
}

func TestSummary_ShapeAndKeys(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	raw, err := run(t, "summary", data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if jsonErr := json.Unmarshal(raw, &m); jsonErr != nil {
		t.Fatalf("summary result_json must be a JSON object: %v", jsonErr)
	}
	for _, key := range []string{"count", "mean", "median", "std", "variance", "min", "max", "range", "q25", "q75", "autocorr"} {
		if _, ok := m[key]; !ok {
			t.Errorf("summary missing key %q", key)
		}
	}
}

func TestNames_CoversAllRegistryNativeStatistics(t *testing.T) {
	want := []string{
		"mean", "median", "mode", "std", "variance", "min", "max", "range",
		"percentile", "q1", "q3", "iqr", "count", "skewness", "kurtosis",
		"correlation", "summary",
	}
	got := Names()
	gotSet := make(map[string]bool, len(got))
	for _, n := range got {
		gotSet[n] = true
	}
	for _, n := range want {
		if !gotSet[n] {
			t.Errorf("kernel.Names() missing %q", n)
		}
	}
}
