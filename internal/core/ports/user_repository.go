package ports

import (
	"context"

	"github.com/userhub/auth-api/internal/core/domain"
)

// UserRepository is the user directory. Lookups return domain.ErrUserNotFound
// when nothing matches; writes that would break username or email uniqueness
// return an error wrapping domain.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update persists every field of user, which must carry an existing ID.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
