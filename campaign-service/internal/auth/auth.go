// Package auth guards admin writes with HMAC-signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ctxKeySubject ctxKey = "auth.subject"

var (
	ErrMissingToken = errors.New("bearer token required")
	ErrMissingScope = errors.New("missing required scope")
)

// Verifier checks HS256 tokens carrying a required scope, either in a
// space separated "scope" claim or a "roles" array.
type Verifier struct {
	secret []byte
	scope  string
	issuer string
}

func NewVerifier(secret, scope, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), scope: scope, issuer: issuer}
}

// Enabled is false when no secret is configured; the middleware then lets
// every request through.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify validates a raw token and returns its subject.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("token parse error: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if v.scope != "" && !hasScope(claims, v.scope) {
		return "", ErrMissingScope
	}
	sub, _ := claims.GetSubject()
	return sub, nil
}

func hasScope(claims jwt.MapClaims, want string) bool {
	if scope, ok := claims["scope"].(string); ok {
		for _, s := range strings.Fields(scope) {
			if s == want {
				return true
			}
		}
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// Authorize checks the Authorization header of r.
func (v *Verifier) Authorize(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return "", ErrMissingToken
	}
	return v.Verify(strings.TrimSpace(authz[len("bearer "):]))
}

// Middleware rejects requests without a valid token. The caller decides how
// the rejection is rendered.
func (v *Verifier) Middleware(reject func(w http.ResponseWriter, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := v.Authorize(r)
			if err != nil {
				reject(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySubject, sub)))
		})
	}
}

// SubjectFromContext returns the token subject stored by Middleware.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubject).(string)
	return s
}
