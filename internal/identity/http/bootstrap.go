package http

import (
	"errors"
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// BootstrapHandler serves POST /auth/bootstrap, the one-time setup endpoint
// that seeds the platform roles and the first admin account.
type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	res, err := h.BootstrapService.Bootstrap(ctx, req.Token, req.AdminUsername, req.AdminPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapDone):
			authsdk.NewAPIError(http.StatusConflict, "already_bootstrapped",
				"The platform has already been set up.").WriteError(w)
		case errors.Is(err, service.ErrBootstrapToken),
			errors.Is(err, service.ErrBootstrapDisabled):
			authsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrBootstrapRequest):
			authsdk.ErrInvalidRequest.WriteError(w)
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.BootstrapResponse{
		AdminUserID: res.AdminUserID,
		Roles:       res.Roles,
	})
}
