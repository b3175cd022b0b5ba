// Package statistics is the Gateway's Statistics Composition Service
// (C8): generate_data, calculate and comprehensive, each built purely
// out of Analyze calls against the Engine RPC Client (C7) — per
// Open Question 4's resolution, the composition service holds no local
// kernel and every StatisticsResult value comes from the Engine (or is
// combined from Engine values: sum, and range/iqr when not requested).
// The one thing read directly off raw data is Comprehensive's
// DataSummary range bounds, the min and max of the generated sequence.
//
// Grounded on the teacher's internal/handlers.AnalyticsHandler
// delegate-to-backend-client pattern, and on original_source's
// DefaultStatisticsService::build_statistics_result (the get_value/
// custom-percentile/q2-equals-median assembly logic is carried over
// verbatim in spirit, expressed against this repo's StatisticsResult).
package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hctx/analytics-platform/pkg/apperror"
	"github.com/hctx/analytics-platform/pkg/observability"
	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// EngineCaller is the subset of engineclient.Client the composition
// service needs; narrowed to ease testing with a fake.
type EngineCaller interface {
	Analyze(ctx context.Context, req *rpcwire.AnalysisRequest) (*rpcwire.AnalysisResponse, error)
}

// Service implements the Statistics Composition Service against an
// EngineCaller.
type Service struct {
	engine EngineCaller
	sink   observability.Sink
}

// New builds a Service. sink may be nil, in which case the global
// observability sink is used.
func New(engine EngineCaller, sink observability.Sink) *Service {
	return &Service{engine: engine, sink: sink}
}

func (s *Service) sinkOrGlobal() observability.Sink {
	if s.sink != nil {
		return s.sink
	}
	return observability.Get()
}

// distributionShapeLabel mirrors the original Rust source's hardcoded
// ShapeStatistics.distribution_shape value exactly (no classification
// rule is normative in the distilled spec, so the original's literal
// constant is preserved — see original_source/.../service.rs).
const distributionShapeLabel = "analytics_engine"

func validateData(data []float64) *apperror.Error {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.New(apperror.CodeValidation, "data must not contain NaN or Inf")
		}
	}
	return nil
}

// call issues one serialized Analyze call and returns its decoded
// result plus the execution time the Engine reported, so callers can
// accumulate an additive PerformanceInfo.
func (s *Service) call(ctx context.Context, requestID, algorithm string, data []float64, params map[string]string, opts rpcwire.AnalysisOptions) (json.RawMessage, float64, *apperror.Error) {
	resp, err := s.engine.Analyze(ctx, &rpcwire.AnalysisRequest{
		RequestID: requestID,
		Algorithm: algorithm,
		Data:      data,
		Params:    params,
		Options:   opts,
	})
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.CodeTransport, err, "engine call for %q failed", algorithm)
	}
	if !resp.Success {
		return nil, 0, apperror.New(apperror.CodeNativeFailure, "%s", resp.ErrorMessage)
	}
	elapsed := 0.0
	if resp.Metadata != nil {
		elapsed = resp.Metadata.ExecutionTimeMs
	}
	return json.RawMessage(resp.ResultJSON), elapsed, nil
}

func (s *Service) callScalar(ctx context.Context, requestID, algorithm string, data []float64, params map[string]string, opts rpcwire.AnalysisOptions) (float64, float64, *apperror.Error) {
	raw, elapsed, err := s.call(ctx, requestID, algorithm, data, params, opts)
	if err != nil {
		return 0, elapsed, err
	}
	var v float64
	if jsonErr := json.Unmarshal(raw, &v); jsonErr != nil {
		return 0, elapsed, apperror.Wrap(apperror.CodeNativeFailure, jsonErr, "engine returned a non-numeric result for %q", algorithm)
	}
	return v, elapsed, nil
}

// GenerateData calls generate_<distribution> and returns the raw
// sequence plus its performance timing.
func (s *Service) GenerateData(ctx context.Context, req *rpcwire.GenerateRandomDataRequest) (*rpcwire.GenerateRandomDataResponse, *apperror.Error) {
	cfg := req.Config
	algorithm := "generate_" + cfg.Distribution
	params := generateParams(cfg)

	raw, elapsedMs, err := s.call(ctx, uuid.NewString(), algorithm, nil, params, rpcwire.AnalysisOptions{})
	if err != nil {
		return nil, err
	}

	var data []float64
	if jsonErr := json.Unmarshal(raw, &data); jsonErr != nil {
		return nil, apperror.Wrap(apperror.CodeNativeFailure, jsonErr, "engine returned a malformed sequence for %q", algorithm)
	}

	return &rpcwire.GenerateRandomDataResponse{
		Data:  data,
		Count: int32(len(data)),
		Seed:  cfg.Seed,
		Performance: rpcwire.PerformanceInfo{
			TotalTimeMs: elapsedMs,
			StepTimesMs: map[string]float64{algorithm: elapsedMs},
		},
	}, nil
}

func generateParams(cfg rpcwire.GenerateDataConfig) map[string]string {
	params := map[string]string{
		"count": fmt.Sprintf("%d", cfg.Count),
		"seed":  fmt.Sprintf("%d", cfg.Seed),
	}
	switch cfg.Distribution {
	case "normal":
		params["mean"] = fmt.Sprintf("%g", cfg.Mean)
		params["std_dev"] = fmt.Sprintf("%g", cfg.StdDev)
	case "exponential":
		params["lambda"] = fmt.Sprintf("%g", cfg.Lambda)
	default: // uniform
		params["min"] = fmt.Sprintf("%g", cfg.Min)
		params["max"] = fmt.Sprintf("%g", cfg.Max)
	}
	return params
}

// knownStatistics is the set of statistic names Calculate recognizes;
// anything else is dropped per spec §4.8's "unknown statistic names
// are silently dropped after emitting one observability record".
var knownStatistics = map[string]bool{
	"mean": true, "median": true, "mode": true, "std": true, "variance": true,
	"min": true, "max": true, "range": true, "q1": true, "q3": true, "iqr": true,
	"count": true, "skewness": true, "kurtosis": true, "correlation": true, "summary": true,
}

// Calculate computes StatisticsResult by issuing one serialized Analyze
// call per requested statistic, in request order, per spec §4.8/§5.
func (s *Service) Calculate(ctx context.Context, req *rpcwire.CalculateStatisticsRequest) (*rpcwire.CalculateStatisticsResponse, *apperror.Error) {
	if err := validateData(req.Data); err != nil {
		return nil, err
	}
	for _, p := range req.Percentiles {
		if p < 0 || p > 100 {
			return nil, apperror.New(apperror.CodeValidation, "percentile %g is outside [0,100]", p)
		}
	}

	// Every group field starts at NaN — spec §3: "Missing fields
	// (algorithm not requested) are encoded as NaN, never omitted" —
	// and is only overwritten by a statistic actually requested below.
	result := rpcwire.StatisticsResult{
		Basic: rpcwire.BasicStats{
			Count: int32(len(req.Data)),
			Sum:   rpcwire.NaN(),
			Mean:  rpcwire.NaN(),
			Min:   rpcwire.NaN(),
			Max:   rpcwire.NaN(),
			Range: rpcwire.NaN(),
		},
		Distribution: rpcwire.DistributionStats{
			Median:   rpcwire.NaN(),
			Variance: rpcwire.NaN(),
			StdDev:   rpcwire.NaN(),
			IQR:      rpcwire.NaN(),
		},
		Percentiles: rpcwire.PercentileStats{
			Q1:     rpcwire.NaN(),
			Q2:     rpcwire.NaN(),
			Q3:     rpcwire.NaN(),
			Custom: map[string]float64{},
		},
		Shape: rpcwire.ShapeStats{
			Skewness:          rpcwire.NaN(),
			Kurtosis:          rpcwire.NaN(),
			DistributionShape: distributionShapeLabel,
		},
	}
	stepTimes := map[string]float64{}
	var total float64
	mean, min, max, q1, q3 := math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()

	requestID := uuid.NewString()

	for _, name := range req.Statistics {
		if !knownStatistics[name] {
			s.sinkOrGlobal().Log(ctx, &observability.Entry{
				Timestamp: time.Now(), Level: "warn", Component: "statistics",
				Message: "dropping unknown statistic",
				Fields:  map[string]any{"statistic": name},
			})
			continue
		}

		if name == "mode" {
			raw, elapsed, err := s.call(ctx, requestID, name, req.Data, nil, req.Options)
			total += elapsed
			stepTimes[name] = elapsed
			if err != nil {
				return nil, err
			}
			var mode struct {
				Modes []float64 `json:"modes"`
			}
			if jsonErr := json.Unmarshal(raw, &mode); jsonErr != nil {
				return nil, apperror.Wrap(apperror.CodeNativeFailure, jsonErr, "engine returned a malformed mode result")
			}
			result.Distribution.Mode = mode.Modes
			continue
		}

		v, elapsed, err := s.callScalar(ctx, requestID, name, req.Data, nil, req.Options)
		total += elapsed
		stepTimes[name] = elapsed
		if err != nil {
			return nil, err
		}

		switch name {
		case "mean":
			mean = v
			result.Basic.Mean = rpcwire.Float64(v)
		case "min":
			min = v
			result.Basic.Min = rpcwire.Float64(v)
		case "max":
			max = v
			result.Basic.Max = rpcwire.Float64(v)
		case "range":
			result.Basic.Range = rpcwire.Float64(v)
		case "median":
			result.Distribution.Median = rpcwire.Float64(v)
			result.Percentiles.Q2 = rpcwire.Float64(v)
		case "variance":
			result.Distribution.Variance = rpcwire.Float64(v)
		case "std":
			result.Distribution.StdDev = rpcwire.Float64(v)
		case "q1":
			q1 = v
			result.Percentiles.Q1 = rpcwire.Float64(v)
		case "q3":
			q3 = v
			result.Percentiles.Q3 = rpcwire.Float64(v)
		case "iqr":
			result.Distribution.IQR = rpcwire.Float64(v)
		case "skewness":
			result.Shape.Skewness = rpcwire.Float64(v)
		case "kurtosis":
			result.Shape.Kurtosis = rpcwire.Float64(v)
		case "count", "correlation", "summary":
			// carried for completeness/observability parity only; no
			// StatisticsResult field corresponds to these (summary's
			// richer shape belongs to C2's direct Analyze surface, not
			// the decomposed StatisticsResult envelope).
		}
	}

	if math.IsNaN(float64(result.Basic.Range)) && !math.IsNaN(min) && !math.IsNaN(max) {
		result.Basic.Range = rpcwire.Float64(max - min)
	}
	if math.IsNaN(float64(result.Distribution.IQR)) && !math.IsNaN(q1) && !math.IsNaN(q3) {
		result.Distribution.IQR = rpcwire.Float64(q3 - q1)
	}
	if !math.IsNaN(mean) {
		result.Basic.Sum = rpcwire.Float64(mean * float64(len(req.Data)))
	}

	for _, p := range req.Percentiles {
		v, elapsed, err := s.callScalar(ctx, requestID, "percentile", req.Data, map[string]string{"percentile": fmt.Sprintf("%g", p)}, req.Options)
		key := fmt.Sprintf("p%g", p)
		total += elapsed
		stepTimes["percentile_"+key] = elapsed
		if err != nil {
			return nil, err
		}
		result.Percentiles.Custom[key] = v
	}

	return &rpcwire.CalculateStatisticsResponse{
		Statistics: result,
		Performance: rpcwire.PerformanceInfo{
			TotalTimeMs: total,
			StepTimesMs: stepTimes,
		},
	}, nil
}

// Comprehensive runs generate_data then calculate over the generated
// sequence, aggregating timing. A single failure anywhere aborts the
// whole composition: partial results are never returned (spec §4.10).
func (s *Service) Comprehensive(ctx context.Context, req *rpcwire.ComprehensiveAnalysisRequest) *rpcwire.ComprehensiveAnalysisResponse {
	genResp, err := s.GenerateData(ctx, &rpcwire.GenerateRandomDataRequest{Config: req.DataConfig})
	if err != nil {
		return &rpcwire.ComprehensiveAnalysisResponse{Success: false, Error: err.Error(), AnalyzedAt: now()}
	}

	statsReq := req.StatsConfig
	statsReq.Data = genResp.Data
	statsResp, err := s.Calculate(ctx, &statsReq)
	if err != nil {
		return &rpcwire.ComprehensiveAnalysisResponse{Success: false, Error: err.Error(), AnalyzedAt: now()}
	}

	preview := genResp.Data
	if len(preview) > 10 {
		preview = preview[:10]
	}
	rangeMin, rangeMax := minMax(genResp.Data)

	total := genResp.Performance.TotalTimeMs + statsResp.Performance.TotalTimeMs
	stepTimes := map[string]float64{}
	for k, v := range genResp.Performance.StepTimesMs {
		stepTimes[k] = v
	}
	for k, v := range statsResp.Performance.StepTimesMs {
		stepTimes[k] = v
	}

	return &rpcwire.ComprehensiveAnalysisResponse{
		Success: true,
		DataSummary: rpcwire.DataSummary{
			Count:        genResp.Count,
			Seed:         genResp.Seed,
			Distribution: req.DataConfig.Distribution,
			Preview:      preview,
			RangeMin:     rangeMin,
			RangeMax:     rangeMax,
		},
		Statistics: statsResp.Statistics,
		Performance: rpcwire.PerformanceInfo{
			TotalTimeMs: total,
			StepTimesMs: stepTimes,
		},
		AnalyzedAt: now(),
	}
}

func minMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
