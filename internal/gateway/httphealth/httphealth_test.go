package httphealth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/hctx/analytics-platform/pkg/rpcwire"
)

type fakeEngine struct {
	resp *rpcwire.HealthResponse
	err  error
}

func (f *fakeEngine) HealthCheck(context.Context) (*rpcwire.HealthResponse, error) {
	return f.resp, f.err
}

func TestHealth_AlwaysOK(t *testing.T) {
	mux := Handler(&fakeEngine{err: errors.New("engine down")})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200 (liveness must not depend on the Engine)", rec.Code)
	}
}

func TestReady_ReportsEngineUnreachable(t *testing.T) {
	mux := Handler(&fakeEngine{err: errors.New("engine down")})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != 503 {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestReady_ReportsEngineHealthy(t *testing.T) {
	mux := Handler(&fakeEngine{resp: &rpcwire.HealthResponse{Healthy: true}})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
