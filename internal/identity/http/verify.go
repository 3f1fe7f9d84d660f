package http

import (
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// VerifyHandler serves POST /auth/verify-token. Gateways and downstream
// services call this when they want the identity service to do the full
// check, including the revocation list a local verifier cannot see.
type VerifyHandler struct {
	AuthService *service.AuthService
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.VerifyTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	principal, err := h.AuthService.VerifyToken(ctx, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, principalResponse(principal))
}
