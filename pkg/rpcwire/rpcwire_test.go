package rpcwire

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFloat64_MarshalsNaNAsStringSentinel(t *testing.T) {
	b, err := json.Marshal(NaN())
	if err != nil {
		t.Fatalf("marshaling NaN must not error: %v", err)
	}
	if string(b) != `"NaN"` {
		t.Errorf("got %s, want \"NaN\"", b)
	}
}

func TestFloat64_MarshalsFiniteValuesAsPlainNumbers(t *testing.T) {
	b, err := json.Marshal(Float64(2.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "2.5" {
		t.Errorf("got %s, want 2.5", b)
	}
}

func TestFloat64_RoundTripsThroughJSON(t *testing.T) {
	var decoded Float64
	if err := json.Unmarshal([]byte(`"NaN"`), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(float64(decoded)) {
		t.Errorf("got %v, want NaN", float64(decoded))
	}

	if err := json.Unmarshal([]byte("3.25"), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if float64(decoded) != 3.25 {
		t.Errorf("got %v, want 3.25", float64(decoded))
	}
}

func TestStatisticsResult_NaNSurvivesWireRoundTrip(t *testing.T) {
	result := StatisticsResult{
		Basic:        BasicStats{Count: 3, Mean: Float64(2), Sum: NaN(), Min: NaN(), Max: NaN(), Range: NaN()},
		Distribution: DistributionStats{Median: NaN(), Variance: NaN(), StdDev: NaN(), IQR: NaN()},
		Percentiles:  PercentileStats{Q1: NaN(), Q2: NaN(), Q3: NaN()},
		Shape:        ShapeStats{Skewness: Float64(0), Kurtosis: NaN(), DistributionShape: "analytics_engine"},
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshaling a NaN-bearing StatisticsResult must not error: %v", err)
	}

	var decoded StatisticsResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshaling must not error: %v", err)
	}
	if float64(decoded.Basic.Mean) != 2 {
		t.Errorf("mean = %v, want 2", float64(decoded.Basic.Mean))
	}
	if !math.IsNaN(float64(decoded.Basic.Sum)) {
		t.Errorf("sum = %v, want NaN (not requested)", float64(decoded.Basic.Sum))
	}
	if float64(decoded.Shape.Skewness) != 0 {
		t.Errorf("skewness = %v, want 0 (computed, distinguishable from NaN)", float64(decoded.Shape.Skewness))
	}
	if !math.IsNaN(float64(decoded.Shape.Kurtosis)) {
		t.Errorf("kurtosis = %v, want NaN", float64(decoded.Shape.Kurtosis))
	}
}
