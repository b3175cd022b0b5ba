// Package httphealth is the Gateway's GET /health surface (spec §1's
// explicit out-of-scope external collaborator "the HTTP health
// surface" — carried here as ambient infrastructure every binary in
// the teacher's stack exposes regardless).
//
// Grounded on the teacher's services/gateway-svc/cmd/main.go
// handleHealth/handleReady plain http.HandlerFunc pair.
package httphealth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

// EngineHealthChecker is the subset of engineclient.Client readiness
// needs.
type EngineHealthChecker interface {
	HealthCheck(ctx context.Context) (*rpcwire.HealthResponse, error)
}

// Handler returns the GET /health and GET /ready handlers. /health
// always reports ok (liveness only); /ready additionally checks the
// Engine is reachable.
func Handler(engine EngineHealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ready", handleReady(engine))
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(engine EngineHealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := engine.HealthCheck(r.Context())
		if err != nil || resp == nil || !resp.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
