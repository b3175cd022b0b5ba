package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys for analysis spans.
const (
	AttrAlgorithm      = "algorithm.name"
	AttrImplementation = "algorithm.implementation"
	AttrDataSize       = "algorithm.data_size"
	AttrCandidateIndex = "dispatch.candidate_index"
	AttrFellBack       = "dispatch.fell_back"

	AttrBatchID   = "batch.id"
	AttrBatchSize = "batch.size"
	AttrRequestID = "request.id"

	AttrGenerateCount        = "generate.count"
	AttrGenerateSeed         = "generate.seed"
	AttrGenerateDistribution = "generate.distribution"
)

// AlgorithmAttributes describes one analysis call: which algorithm ran,
// which implementation served it, and how much data it saw.
func AlgorithmAttributes(algorithm, implementation string, dataSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.String(AttrImplementation, implementation),
		attribute.Int(AttrDataSize, dataSize),
	}
}

// DispatchAttributes describes one Dispatcher candidate attempt.
func DispatchAttributes(algorithm string, candidateIndex int, fellBack bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrCandidateIndex, candidateIndex),
		attribute.Bool(AttrFellBack, fellBack),
	}
}

// BatchAttributes describes a BatchAnalyze call.
func BatchAttributes(batchID string, size int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrBatchID, batchID),
		attribute.Int(AttrBatchSize, size),
	}
}

// GenerateAttributes describes one GenerateRandomData call.
func GenerateAttributes(count int32, seed uint64, distribution string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrGenerateCount, int64(count)),
		attribute.Int64(AttrGenerateSeed, int64(seed)),
		attribute.String(AttrGenerateDistribution, distribution),
	}
}
