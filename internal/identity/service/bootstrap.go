package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/internal/identity/store"
	"github.com/openclass/identity/pkg/cryptox"
	"github.com/openclass/identity/pkg/idx"
	"github.com/openclass/identity/pkg/slogx"
)

var (
	ErrBootstrapDone     = errors.New("bootstrap_already_done")
	ErrBootstrapToken    = errors.New("invalid_bootstrap_token")
	ErrBootstrapRequest  = errors.New("invalid_bootstrap_request")
	ErrBootstrapDisabled = errors.New("bootstrap_disabled")
)

// Platform roles seeded at bootstrap. Admin administers the platform,
// teachers author courses, students take them.
var DefaultRoles = []string{"admin", "teacher", "student"}

// BootstrapService performs first-run initialization: seed the platform
// roles and create the initial admin account. It only works while the user
// table is empty and requires the one-time token from the environment.
type BootstrapService struct {
	Store store.Store
	Token string
}

type BootstrapResult struct {
	AdminUserID string
	Roles       []string
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token, adminUsername, adminPassword string) (*BootstrapResult, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if s.Token == "" {
		return nil, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("bootstrap attempted with wrong token")
		return nil, ErrBootstrapToken
	}

	adminUsername = strings.TrimSpace(adminUsername)
	if adminUsername == "" || len(adminPassword) < 8 {
		return nil, ErrBootstrapRequest
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return nil, infraErr("check users", err)
	}
	if !empty {
		return nil, ErrBootstrapDone
	}

	hash, err := cryptox.HashPassword(adminPassword)
	if err != nil {
		return nil, err
	}

	result := &BootstrapResult{Roles: DefaultRoles}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var adminRoleID string
		for _, name := range DefaultRoles {
			role := domain.Role{
				ID:        idx.New().String(),
				Name:      name,
				CreatedAt: now,
			}
			if err := tx.Roles().CreateRole(ctx, role); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					existing, err := tx.Roles().GetRoleByName(ctx, name)
					if err != nil {
						return err
					}
					role = existing
				} else {
					return err
				}
			}
			if name == "admin" {
				adminRoleID = role.ID
			}
		}

		admin := domain.User{
			ID:           idx.New().String(),
			Username:     adminUsername,
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		if err := tx.Roles().AssignRole(ctx, admin.ID, adminRoleID); err != nil {
			return err
		}

		result.AdminUserID = admin.ID
		return nil
	})
	if err != nil {
		return nil, infraErr("bootstrap tx", err)
	}

	l.Info("platform bootstrapped",
		slog.String("admin_user_id", result.AdminUserID),
		slog.String("admin_username", adminUsername),
	)
	return result, nil
}
