package rpcwire

// EngineServiceName is the full service name the Engine RPC Server
// (C6) registers and the Engine RPC Client (C7) dials. Its methods are
// the engine interface: Analyze, BatchAnalyze, HealthCheck,
// GetSupportedAlgorithms (spec §4.6).
const EngineServiceName = "analytics.engine.v1.Engine"

// Engine RPC method names, relative to EngineServiceName.
const (
	MethodAnalyze                = "Analyze"
	MethodBatchAnalyze           = "BatchAnalyze"
	MethodGetSupportedAlgorithms = "GetSupportedAlgorithms"
	MethodHealthCheck            = "HealthCheck"
)

// GatewayServiceName is the full service name the Gateway RPC Server
// (C9) registers for the Statistics Composition Service (C8)'s
// surface: GenerateRandomData, CalculateStatistics, ComprehensiveAnalysis
// (spec §4.8, §6).
const GatewayServiceName = "analytics.gateway.v1.Statistics"

// Gateway RPC method names, relative to GatewayServiceName.
const (
	MethodGenerateRandomData    = "GenerateRandomData"
	MethodCalculateStatistics   = "CalculateStatistics"
	MethodComprehensiveAnalysis = "ComprehensiveAnalysis"
)

// FullMethod builds the "/service/method" path grpc.ClientConnInterface.Invoke expects.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}
