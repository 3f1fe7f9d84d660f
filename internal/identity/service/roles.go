package service

import (
	"context"

	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/internal/identity/store"
)

// RolesService exposes the platform role catalogue. Listing is admin-only at
// the HTTP layer.
type RolesService struct {
	Store store.Store
}

func (s *RolesService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.Store.Roles().ListAll(ctx)
	if err != nil {
		return nil, infraErr("list roles", err)
	}
	return roles, nil
}
