// Package rpcwire defines the message shapes exchanged between the
// Gateway and the Analytics Engine, and between external clients and
// the Gateway's statistics surface. These are plain Go structs rather
// than protoc-generated types (see pkg/rpccodec for why), but the field
// set mirrors exactly what a .proto compile for this service would
// produce.
package rpcwire

import (
	"encoding/json"
	"math"
)

// Float64 is a StatisticsResult field that encodes math.NaN() as the
// JSON string "NaN" instead of erroring (encoding/json.Marshal rejects
// bare NaN floats) or silently becoming 0. Per spec §3: "Missing fields
// (algorithm not requested) are encoded as NaN, never omitted;
// downstream decoders must treat NaN as 'not computed'."
type Float64 float64

// NaN is the zero value every StatisticsResult group field starts from,
// overwritten only by statistics actually computed.
func NaN() Float64 { return Float64(math.NaN()) }

func (f Float64) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return json.Marshal("NaN")
	}
	return json.Marshal(float64(f))
}

func (f *Float64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "NaN" {
			*f = Float64(math.NaN())
			return nil
		}
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float64(v)
	return nil
}

// AnalysisOptions controls Dispatcher candidate selection for one request.
type AnalysisOptions struct {
	PreferNative    bool  `json:"prefer_native"`
	AllowAlternate  bool  `json:"allow_alternate"`
	TimeoutMs       int32 `json:"timeout_ms"`
	IncludeMetadata bool  `json:"include_metadata"`
}

// AnalysisRequest is the envelope the Dispatcher consumes.
type AnalysisRequest struct {
	RequestID string            `json:"request_id"`
	Algorithm string            `json:"algorithm"`
	Data      []float64         `json:"data"`
	Params    map[string]string `json:"params"`
	Options   AnalysisOptions   `json:"options"`
}

// ExecutionMetadata describes how a request was actually executed.
type ExecutionMetadata struct {
	Implementation  string            `json:"implementation"`
	ExecutionTimeMs float64           `json:"execution_time_ms"`
	Algorithm       string            `json:"algorithm"`
	DataSize        int32             `json:"data_size"`
	Stats           map[string]string `json:"stats,omitempty"`
}

// AnalysisResponse is the reply envelope the Engine returns.
type AnalysisResponse struct {
	RequestID    string             `json:"request_id"`
	Success      bool               `json:"success"`
	ErrorMessage string             `json:"error_message,omitempty"`
	ResultJSON   string             `json:"result_json,omitempty"`
	Metadata     *ExecutionMetadata `json:"metadata,omitempty"`
}

// BatchAnalysisRequest drives a BatchAnalyze server-streaming call.
type BatchAnalysisRequest struct {
	BatchID  string            `json:"batch_id"`
	Requests []AnalysisRequest `json:"requests"`
}

// AlgorithmDescriptor is one entry of the Registry's static catalog.
type AlgorithmDescriptor struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Implementations []string `json:"implementations"`
	RequiredParams  []string `json:"required_params"`
	OptionalParams  []string `json:"optional_params"`
}

// AlgorithmList is the reply to GetSupportedAlgorithms.
type AlgorithmList struct {
	Algorithms []AlgorithmDescriptor `json:"algorithms"`
}

// HealthResponse is the reply to HealthCheck.
type HealthResponse struct {
	Healthy      bool              `json:"healthy"`
	Version      string            `json:"version"`
	Capabilities map[string]string `json:"capabilities"`
}

// Empty is the request message for HealthCheck/GetSupportedAlgorithms.
type Empty struct{}

// GenerateDataConfig parameterizes generate_* algorithms.
type GenerateDataConfig struct {
	Count        int32   `json:"count"`
	Seed         uint64  `json:"seed"`
	Distribution string  `json:"distribution"`
	Min          float64 `json:"min,omitempty"`
	Max          float64 `json:"max,omitempty"`
	Mean         float64 `json:"mean,omitempty"`
	StdDev       float64 `json:"std_dev,omitempty"`
	Lambda       float64 `json:"lambda,omitempty"`
}

// GenerateRandomDataRequest is the Gateway-facing request for C8's
// generate_data entry point.
type GenerateRandomDataRequest struct {
	Config GenerateDataConfig `json:"config"`
}

// PerformanceInfo carries additive timing totals for a composition call.
type PerformanceInfo struct {
	TotalTimeMs float64           `json:"total_time_ms"`
	StepTimesMs map[string]float64 `json:"step_times_ms,omitempty"`
}

// GenerateRandomDataResponse is C8's generate_data result.
type GenerateRandomDataResponse struct {
	Data        []float64       `json:"data"`
	Count       int32           `json:"count"`
	Seed        uint64          `json:"seed"`
	Performance PerformanceInfo `json:"performance"`
}

// BasicStats is the "basic" group of StatisticsResult. Count is always
// populated (len(data)); the rest default to NaN until the matching
// statistic is actually requested.
type BasicStats struct {
	Count int32   `json:"count"`
	Sum   Float64 `json:"sum"`
	Mean  Float64 `json:"mean"`
	Min   Float64 `json:"min"`
	Max   Float64 `json:"max"`
	Range Float64 `json:"range"`
}

// DistributionStats is the "distribution" group of StatisticsResult.
type DistributionStats struct {
	Median   Float64   `json:"median"`
	Mode     []float64 `json:"mode"`
	Variance Float64   `json:"variance"`
	StdDev   Float64   `json:"std_dev"`
	IQR      Float64   `json:"iqr"`
}

// PercentileStats is the "percentiles" group of StatisticsResult.
type PercentileStats struct {
	Q1     Float64            `json:"q1"`
	Q2     Float64            `json:"q2"`
	Q3     Float64            `json:"q3"`
	Custom map[string]float64 `json:"custom,omitempty"`
}

// ShapeStats is the "shape" group of StatisticsResult.
type ShapeStats struct {
	Skewness          Float64 `json:"skewness"`
	Kurtosis          Float64 `json:"kurtosis"`
	DistributionShape string  `json:"distribution_shape"`
}

// StatisticsResult is the envelope the Composition Service returns for
// calculate and comprehensive.
type StatisticsResult struct {
	Basic        BasicStats        `json:"basic"`
	Distribution DistributionStats `json:"distribution"`
	Percentiles  PercentileStats   `json:"percentiles"`
	Shape        ShapeStats        `json:"shape"`
}

// CalculateStatisticsRequest is the Gateway-facing request for C8's
// calculate entry point.
type CalculateStatisticsRequest struct {
	Data        []float64         `json:"data"`
	Statistics  []string          `json:"statistics"`
	Percentiles []float64         `json:"percentiles,omitempty"`
	Options     AnalysisOptions   `json:"options"`
}

// CalculateStatisticsResponse is C8's calculate result.
type CalculateStatisticsResponse struct {
	Statistics  StatisticsResult `json:"statistics"`
	Performance PerformanceInfo  `json:"performance"`
}

// DataSummary is restored from the original Rust source (see
// SPEC_FULL.md's supplemented-features section): distinct from
// StatisticsResult, it summarizes the raw generated sequence.
type DataSummary struct {
	Count        int32     `json:"count"`
	Seed         uint64    `json:"seed"`
	Distribution string    `json:"distribution"`
	Preview      []float64 `json:"preview"`
	RangeMin     float64   `json:"range_min"`
	RangeMax     float64   `json:"range_max"`
}

// ComprehensiveAnalysisRequest is the Gateway-facing request for C8's
// comprehensive entry point.
type ComprehensiveAnalysisRequest struct {
	DataConfig  GenerateDataConfig         `json:"data_config"`
	StatsConfig CalculateStatisticsRequest `json:"stats_config"`
}

// ComprehensiveAnalysisResponse is C8's comprehensive result.
type ComprehensiveAnalysisResponse struct {
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	DataSummary DataSummary      `json:"data_summary"`
	Statistics  StatisticsResult `json:"statistics"`
	Performance PerformanceInfo  `json:"performance"`
	AnalyzedAt  string           `json:"analyzed_at"`
}
