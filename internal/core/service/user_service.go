package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

const msgUserUpdated = "User updated successfully"

// UserService implements registration and profile management.
type UserService struct {
	repo      ports.UserRepository
	codec     ports.TokenCodec
	hasher    ports.PasswordHasher
	policy    *Policy
	audit     ports.AuditRecorder
	accessTTL time.Duration
	log       zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	policy *Policy,
	audit ports.AuditRecorder,
	accessTTL time.Duration,
	log zerolog.Logger,
) *UserService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &UserService{
		repo:      repo,
		codec:     codec,
		hasher:    hasher,
		policy:    policy,
		audit:     audit,
		accessTTL: accessTTL,
		log:       log,
	}
}

// Register creates a new account after checking username and email are free.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("register: unknown role %q: %w", in.Role, domain.ErrInvalidInput)
	}

	taken, err := s.repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameExists
	}
	taken, err = s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.audit, domain.AuditRegister, created.Username, domain.OutcomeSuccess, created.Role.String())
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// ViewProfile returns the profile id. Callers may only read their own profile
// unless they are ADMIN.
func (s *UserService) ViewProfile(ctx context.Context, id string) (*domain.User, error) {
	if err := s.policy.RequireSelfOrAdmin(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ListProfiles returns every profile. ADMIN only.
func (s *UserService) ListProfiles(ctx context.Context) ([]*domain.User, error) {
	if err := s.policy.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// CurrentUser returns the profile of the authenticated caller.
func (s *UserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.policy.CurrentUser(ctx)
}

// UpdateProfile applies patch to profile id and issues a token reflecting the
// updated username and role. Role changes are only honoured for ADMIN callers.
// When callers update themselves, the request's authentication binding is
// replaced with the new identity.
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch ports.ProfilePatch) (*ports.AuthResult, error) {
	current, err := s.policy.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := s.policy.HasRole(ctx, domain.RoleAdmin)
	isSelf := current.ID == target.ID
	if !isAdmin && !isSelf {
		s.record(domain.AuditProfileUpdate, current.Username, domain.OutcomeFailure, "target "+target.ID)
		return nil, domain.ErrNotSelfOrAdmin
	}

	if err := s.applyPatch(ctx, target, patch, isAdmin); err != nil {
		return nil, err
	}
	target.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(updated.Username, updated.RoleNames(), s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if isSelf {
		authctx.FromContext(ctx).Set(updated.Username, []domain.Role{updated.Role}, token)
	}

	s.record(domain.AuditProfileUpdate, current.Username, domain.OutcomeSuccess, "target "+updated.ID)
	s.log.Info().
		Str("user_id", updated.ID).
		Str("updated_by", current.Username).
		Msg("profile updated")

	return &ports.AuthResult{User: updated, Token: token, Message: msgUserUpdated}, nil
}

func (s *UserService) applyPatch(ctx context.Context, u *domain.User, patch ports.ProfilePatch, isAdmin bool) error {
	if !isBlank(patch.Username) && patch.Username != u.Username {
		taken, err := s.repo.ExistsByUsername(ctx, patch.Username)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if taken {
			return domain.ErrUsernameExists
		}
	}
	if !isBlank(patch.Email) && patch.Email != u.Email {
		taken, err := s.repo.ExistsByEmail(ctx, patch.Email)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if taken {
			return domain.ErrEmailExists
		}
	}

	setIfPresent(&u.FirstName, patch.FirstName)
	setIfPresent(&u.LastName, patch.LastName)
	setIfPresent(&u.Username, patch.Username)
	setIfPresent(&u.Email, patch.Email)
	setIfPresent(&u.Phone, patch.Phone)
	setIfPresent(&u.Address, patch.Address)

	if !isBlank(patch.Password) {
		hash, err := s.hasher.Hash(patch.Password)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		u.PasswordHash = hash
	}

	// Non-admins may send a role; it is ignored rather than rejected.
	if isAdmin && patch.Role != nil && patch.Role.Valid() {
		u.Role = *patch.Role
	}
	return nil
}

// DeleteProfile removes profile id. ADMIN only.
func (s *UserService) DeleteProfile(ctx context.Context, id string) error {
	if err := s.policy.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	caller, _ := authctx.Current(ctx)
	s.record(domain.AuditProfileDelete, caller.Principal, domain.OutcomeSuccess, "target "+id)
	s.log.Info().Str("user_id", id).Str("deleted_by", caller.Principal).Msg("profile deleted")
	return nil
}

func (s *UserService) record(action domain.AuditAction, username, outcome, detail string) {
	recordAudit(s.audit, action, username, outcome, detail)
}

func setIfPresent(dst *string, v string) {
	if !isBlank(v) {
		*dst = v
	}
}
