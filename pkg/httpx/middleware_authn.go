package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/openclass/identity/pkg/jwtx"
	"github.com/openclass/identity/pkg/slogx"
)

// TokenVerifier is the full verification the identity service performs:
// signature, expiry, and revocation. The service's AuthService satisfies it.
type TokenVerifier interface {
	VerifyClaims(ctx context.Context, token string) (jwtx.Claims, error)
}

// AuthnMiddleware authenticates requests via the Authorization bearer header
// and injects the verified claims into the request context.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.VerifyClaims(ctx, raw)
			if err != nil {
				log.Warn("bearer token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			// Refresh tokens are for the refresh endpoint only.
			if claims.TokenUse != jwtx.TokenUseAccess {
				writeBearerError(w, "not an access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
