package http

import (
	"net/http"

	"github.com/openclass/identity/internal/identity/service"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
)

// RolesHandler serves GET /auth/roles. Admin-only; the role guard runs in
// the middleware chain.
type RolesHandler struct {
	RolesService *service.RolesService
}

func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListRoles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, authsdk.RoleResponse{
			ID:   role.ID,
			Name: role.Name,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
