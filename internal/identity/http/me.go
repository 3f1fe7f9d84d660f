package http

import (
	"net/http"

	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// MeHandler serves GET /auth/me. The authn middleware has already verified
// the bearer token; this just echoes the principal back.
type MeHandler struct{}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	resp := authsdk.PrincipalResponse{
		Subject:  claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
		JTI:      claims.ID,
	}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
