package ports

import (
	"context"

	"github.com/userhub/auth-api/internal/core/domain"
)

// RegisterInput carries a new account. Password is the plain secret.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     string
	Address   string
	Password  string
	Role      domain.Role
}

// ProfilePatch holds the fields of a partial profile update. Blank strings
// and a nil Role mean "leave unchanged".
type ProfilePatch struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     string
	Address   string
	Password  string
	Role      *domain.Role
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	ViewProfile(ctx context.Context, id string) (*domain.User, error)
	ListProfiles(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*AuthResult, error)
	DeleteProfile(ctx context.Context, id string) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Identity answers questions about the caller of the current request.
type Identity interface {
	AuthenticatedUsername(ctx context.Context) (string, error)
	HasRole(ctx context.Context, role domain.Role) bool
}
