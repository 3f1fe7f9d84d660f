package http

import (
	"errors"
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/jwtx"
	"github.com/openclass/identity/pkg/slogx"
)

// writeServiceError maps service-layer errors onto the wire taxonomy. Every
// credential or token failure is a distinct-code 401; only infrastructure
// trouble is retryable and becomes 503.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrTokenRevoked):
		authsdk.ErrTokenRevoked.WriteError(w)
	case errors.Is(err, jwtx.ErrMalformed):
		authsdk.ErrMalformedToken.WriteError(w)
	case errors.Is(err, jwtx.ErrInvalidSig):
		authsdk.ErrInvalidSignature.WriteError(w)
	case errors.Is(err, jwtx.ErrExpired):
		authsdk.ErrTokenExpired.WriteError(w)
	case errors.Is(err, jwtx.ErrNotYetValid),
		errors.Is(err, jwtx.ErrIssuer),
		errors.Is(err, jwtx.ErrInvalidClaim):
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrInfrastructure):
		slogx.FromContext(r.Context()).Error("backend unavailable", "err", err)
		authsdk.ErrServiceUnavailable.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
