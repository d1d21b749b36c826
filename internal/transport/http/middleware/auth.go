package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marketplace-api/internal/domain"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// SessionStore is the session lookup Auth needs to honor revocation.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Auth returns middleware that validates the Bearer JWT, checks that the
// session it names is still enabled, and injects claims into context. The
// session check is what makes logout, password reset, and account deletion
// take effect immediately instead of when the token expires.
func Auth(provider *jwtinfra.Provider, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			if sessions != nil {
				sess, err := sessions.Get(r.Context(), claims.SessionID)
				if err != nil || !sess.Enable {
					writeUnauthorized(w, "session revoked")
					return
				}
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeEnvelope(w, http.StatusUnauthorized, msg)
}
