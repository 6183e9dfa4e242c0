package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

// Policy makes role-based authorization decisions for the request behind a
// context. Roles come from the request's authentication binding, identity
// lookups from the user directory.
type Policy struct {
	repo ports.UserRepository
}

func NewPolicy(repo ports.UserRepository) *Policy {
	return &Policy{repo: repo}
}

// AuthenticatedUsername returns the principal of the current request.
func (p *Policy) AuthenticatedUsername(ctx context.Context) (string, error) {
	b, ok := authctx.Current(ctx)
	if !ok || b.Principal == "" {
		return "", domain.ErrNotAuthenticated
	}
	return b.Principal, nil
}

// CurrentUser resolves the principal of the current request to its directory
// record. A principal that no longer exists is treated as unauthenticated.
func (p *Policy) CurrentUser(ctx context.Context) (*domain.User, error) {
	username, err := p.AuthenticatedUsername(ctx)
	if err != nil {
		return nil, err
	}
	u, err := p.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	return u, nil
}

// HasRole reports whether the current request was granted role. Anonymous
// requests hold no roles.
func (p *Policy) HasRole(ctx context.Context, role domain.Role) bool {
	b, ok := authctx.Current(ctx)
	return ok && b.HasRole(role)
}

// RequireAdmin fails with an access-denied error unless the caller is ADMIN.
func (p *Policy) RequireAdmin(ctx context.Context) error {
	if _, ok := authctx.Current(ctx); !ok {
		return domain.ErrNotAuthenticated
	}
	if !p.HasRole(ctx, domain.RoleAdmin) {
		return domain.ErrAdminOnly
	}
	return nil
}

// RequireSelfOrAdmin fails with an access-denied error unless the caller owns
// targetID or is ADMIN.
func (p *Policy) RequireSelfOrAdmin(ctx context.Context, targetID string) error {
	current, err := p.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current.ID == targetID || p.HasRole(ctx, domain.RoleAdmin) {
		return nil
	}
	return domain.ErrNotSelfOrAdmin
}
