package http

import (
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// LogoutHandler serves POST /auth/logout. Revocation is idempotent: logging
// out twice, or with an already-expired token, still returns 200. Garbage
// that never was a token is a 401 so clients notice broken integrations.
type LogoutHandler struct {
	AuthService *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.AccessToken == "" && req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(ctx, req.AccessToken, req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
