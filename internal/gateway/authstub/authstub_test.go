package authstub

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hctx/analytics-platform/pkg/config"
)

func signToken(t *testing.T, secret string, expiry time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestGate_DisabledAlwaysVerifies(t *testing.T) {
	g := New(config.AuthConfig{Enabled: false})
	if !g.Verify("") {
		t.Error("a disabled gate must verify every token, including empty ones")
	}
}

func TestGate_VerifiesASignedUnexpiredToken(t *testing.T) {
	g := New(config.AuthConfig{Enabled: true, Secret: "shh"})
	token := signToken(t, "shh", time.Hour)
	if !g.Verify(token) {
		t.Error("expected a validly-signed, unexpired token to verify")
	}
}

func TestGate_RejectsWrongSecret(t *testing.T) {
	g := New(config.AuthConfig{Enabled: true, Secret: "shh"})
	token := signToken(t, "different-secret", time.Hour)
	if g.Verify(token) {
		t.Error("expected a token signed with the wrong secret to fail verification")
	}
}

func TestGate_RejectsExpiredToken(t *testing.T) {
	g := New(config.AuthConfig{Enabled: true, Secret: "shh"})
	token := signToken(t, "shh", -time.Hour)
	if g.Verify(token) {
		t.Error("expected an expired token to fail verification")
	}
}

func TestGate_RejectsEmptyToken(t *testing.T) {
	g := New(config.AuthConfig{Enabled: true, Secret: "shh"})
	if g.Verify("") {
		t.Error("expected an empty token to fail verification when enabled")
	}
}
