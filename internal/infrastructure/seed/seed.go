// Package seed populates an empty user directory with demo accounts.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

type account struct {
	firstName, lastName string
	address, phone      string
	email, username     string
	password            string
	role                domain.Role
}

var defaultAccounts = []account{
	{"John", "Doe", "123 Main Street", "+6598765432", "john.doe@example.com", "johndoe", "customer123", domain.RoleCustomer},
	{"Admin", "User", "456 Admin Road", "+6511122233", "admin@example.com", "admin", "admin123", domain.RoleAdmin},
	{"Alice", "Wong", "789 Orchard Blvd", "+6512345678", "alice.wong@example.com", "alice", "alice123", domain.RoleUser},
}

// DefaultUsers inserts the demo accounts when the directory is empty and
// returns how many were created. A non-empty directory is left untouched.
func DefaultUsers(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("existing", n).Msg("directory not empty, skipping seed")
		return 0, nil
	}

	created := 0
	for _, a := range defaultAccounts {
		hash, err := hasher.Hash(a.password)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.username, err)
		}
		now := time.Now().UTC()
		if _, err := repo.Create(ctx, &domain.User{
			FirstName:    a.firstName,
			LastName:     a.lastName,
			Phone:        a.phone,
			Address:      a.address,
			Email:        a.email,
			Username:     a.username,
			PasswordHash: hash,
			Role:         a.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return created, fmt.Errorf("seed %s: %w", a.username, err)
		}
		created++
	}

	log.Info().Int("created", created).Msg("seeded default users")
	return created, nil
}
