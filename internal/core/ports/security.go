package ports

import (
	"time"

	"github.com/userhub/auth-api/internal/core/domain"
)

// TokenCodec issues and verifies signed session tokens.
type TokenCodec interface {
	Issue(subject string, roles []string, ttl time.Duration) (string, error)
	// Validate reports whether token is well-signed and unexpired. It never fails loudly.
	Validate(token string) bool
	Decode(token string) (*domain.TokenClaims, error)
}

// PasswordHasher is a one-way secret hash.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Matches(secret, hash string) bool
}
