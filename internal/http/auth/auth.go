// Package auth guards routes with bearer tokens issued by the identity provider.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/identity"
)

type ctxKey struct{}

type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*identity.Claims, error)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token
// and stores the verified claims in the request context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				render.Error(w, http.StatusUnauthorized, "no token provided")
				return
			}

			claims, err := v.VerifyToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				render.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *identity.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func ClaimsFrom(ctx context.Context) (*identity.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*identity.Claims)
	return c, ok
}

// UserID returns the authenticated user's id, or "" outside Middleware.
func UserID(ctx context.Context) string {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.UserID
	}

	return ""
}
