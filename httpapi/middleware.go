package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tripmanager/auth"
)

// TokenVerifier turns a bearer token into the acting principal.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Principal, error)
}

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

func principalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// requireAuth extracts and verifies the Authorization bearer token and
// stores the principal on the request context.
func requireAuth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, logger, http.StatusUnauthorized, errorResponse{
					Error:   "UNAUTHORIZED",
					Message: "missing bearer token",
				})
				return
			}

			principal, err := verifier.VerifyToken(token)
			if err != nil {
				writeJSON(w, logger, http.StatusUnauthorized, errorResponse{
					Error:   "UNAUTHORIZED",
					Message: "invalid or expired token",
				})
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin rejects principals below ADMIN. Runs after requireAuth.
func requireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFrom(r.Context())
			if !ok || !p.IsAdmin() {
				writeJSON(w, logger, http.StatusForbidden, errorResponse{
					Error:   "FORBIDDEN",
					Message: "admin access required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireSuperAdmin rejects everything but SUPER_ADMIN. Runs after
// requireAuth.
func requireSuperAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFrom(r.Context())
			if !ok || !p.IsSuperAdmin() {
				writeJSON(w, logger, http.StatusForbidden, errorResponse{
					Error:   "FORBIDDEN",
					Message: "super admin access required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
