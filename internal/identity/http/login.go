package http

import (
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// LoginHandler serves POST /auth/login. On valid credentials it returns a
// fresh access/refresh token pair; every failure mode (unknown user, wrong
// password, deactivated account) is the same 401 so accounts cannot be
// enumerated.
type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}
