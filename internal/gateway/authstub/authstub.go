// Package authstub is the Gateway's CredentialStore collaborator (spec
// §6): "token verification result (bool) to gate RPC calls if so
// configured... Out of core's scope." This package intentionally
// implements only that narrow surface — no find_by_username,
// create_token, get_session or revoke, since the core never calls
// them.
//
// Grounded on the teacher's NewAuthInterceptor (services/gateway-svc/
// internal/middleware/interceptors.go): Bearer-token extraction and
// rejecting on invalid/missing tokens. There is no public-procedure
// allowlist: an enabled Gate checks every call.
// Where the teacher delegates verification to a remote AuthClient, this
// stub verifies a JWT locally with github.com/golang-jwt/jwt/v5 — the
// core only ever observes the boolean outcome, never credential
// details, matching the CredentialStore contract exactly.
package authstub

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hctx/analytics-platform/pkg/config"
)

// Gate verifies a Bearer token's signature against a fixed secret. A
// disabled Gate (config.Auth.Enabled == false) always authorizes.
type Gate struct {
	enabled bool
	secret  []byte
}

// New builds a Gate from the Gateway's AuthConfig section.
func New(cfg config.AuthConfig) *Gate {
	return &Gate{enabled: cfg.Enabled, secret: []byte(cfg.Secret)}
}

// Verify reports whether token is a validly-signed, unexpired JWT. When
// the Gate is disabled every token verifies true, per spec §6's "if so
// configured".
func (g *Gate) Verify(token string) bool {
	if !g.enabled {
		return true
	}
	if token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	})
	return err == nil && parsed.Valid
}

// Interceptor returns a connect.UnaryInterceptorFunc that rejects any
// call whose Authorization header does not carry a token Verify
// accepts. A disabled Gate installs a no-op interceptor.
func (g *Gate) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !g.enabled {
				return next(ctx, req)
			}

			token := req.Header().Get("Authorization")
			token = strings.TrimPrefix(token, "Bearer ")

			if !g.Verify(token) {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid or missing token"))
			}
			return next(ctx, req)
		}
	}
}
