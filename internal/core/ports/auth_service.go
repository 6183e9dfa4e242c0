package ports

import (
	"context"

	"github.com/userhub/auth-api/internal/core/domain"
)

// AuthResult is returned whenever a token is minted for a user.
type AuthResult struct {
	User    *domain.User
	Token   string
	Message string
}

// ResetCredentialsInput carries a forgotten-login request. Blank Username or
// Password leave the stored value untouched.
type ResetCredentialsInput struct {
	Email    string
	Username string
	Password string
}

// ResetResult echoes the account state after a credential reset.
type ResetResult struct {
	Email    string
	Username string
	Message  string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Refresh(ctx context.Context, oldToken string) (string, error)
	ResetCredentials(ctx context.Context, in ResetCredentialsInput) (*ResetResult, error)
}
