package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

const (
	defaultAccessTTL = time.Hour

	msgAuthenticated  = "Authentication successful"
	msgCredentialsSet = "Updated user credential successfully!"
)

// TokenTTLs holds the configured lifetimes of issued tokens.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

func (t TokenTTLs) withDefaults() TokenTTLs {
	if t.Access <= 0 {
		t.Access = defaultAccessTTL
	}
	if t.Refresh <= 0 {
		t.Refresh = t.Access
	}
	return t
}

// AuthService implements login, token refresh and credential reset.
type AuthService struct {
	repo   ports.UserRepository
	codec  ports.TokenCodec
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	ttls   TokenTTLs
	log    zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	ttls TokenTTLs,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:   repo,
		codec:  codec,
		hasher: hasher,
		audit:  audit,
		ttls:   ttls.withDefaults(),
		log:    log,
	}
}

// Login verifies username/password and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.AuditLogin, username, domain.OutcomeFailure, "unknown username")
			return nil, domain.ErrLoginUserNotFound
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		s.record(domain.AuditLogin, username, domain.OutcomeFailure, "bad password")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username, user.RoleNames(), s.ttls.Access)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.record(domain.AuditLogin, user.Username, domain.OutcomeSuccess, "")
	s.log.Info().Str("username", user.Username).Str("role", user.Role.String()).Msg("user logged in")

	return &ports.AuthResult{User: user, Token: token, Message: msgAuthenticated}, nil
}

// Refresh exchanges a still-valid token for a new one carrying the same
// subject and roles. The directory is not consulted, so the roles are exactly
// those of oldToken.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (string, error) {
	if !s.codec.Validate(oldToken) {
		s.record(domain.AuditRefresh, "", domain.OutcomeFailure, "invalid token")
		return "", domain.ErrInvalidToken
	}

	claims, err := s.codec.Decode(oldToken)
	if err != nil {
		s.record(domain.AuditRefresh, "", domain.OutcomeFailure, "undecodable token")
		return "", fmt.Errorf("refresh: %w", err)
	}

	token, err := s.codec.Issue(claims.Subject, claims.Roles, s.ttls.Refresh)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}

	s.record(domain.AuditRefresh, claims.Subject, domain.OutcomeSuccess, "")
	s.log.Debug().Str("username", claims.Subject).Msg("token refreshed")
	return token, nil
}

// ResetCredentials replaces the username and/or password of the account
// owning in.Email. The record is saved even when neither field is supplied.
func (s *AuthService) ResetCredentials(ctx context.Context, in ports.ResetCredentialsInput) (*ports.ResetResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, domain.ErrEmailRequired
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.AuditCredentialReset, "", domain.OutcomeFailure, "unknown email")
			return nil, &domain.EmailNotFoundError{Email: in.Email}
		}
		return nil, fmt.Errorf("reset credentials: %w", err)
	}

	if !isBlank(in.Username) {
		user.Username = in.Username
	}
	if !isBlank(in.Password) {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("reset credentials: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Update(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update user credentials")
		return nil, fmt.Errorf("failed to update user credentials: %w", err)
	}

	s.record(domain.AuditCredentialReset, saved.Username, domain.OutcomeSuccess, "")
	return &ports.ResetResult{
		Email:    saved.Email,
		Username: saved.Username,
		Message:  msgCredentialsSet,
	}, nil
}

func (s *AuthService) record(action domain.AuditAction, username, outcome, detail string) {
	recordAudit(s.audit, action, username, outcome, detail)
}

func recordAudit(rec ports.AuditRecorder, action domain.AuditAction, username, outcome, detail string) {
	if rec == nil {
		return
	}
	rec.Record(domain.AuditEvent{
		Action:   action,
		Username: username,
		Outcome:  outcome,
		Detail:   detail,
		At:       time.Now().UTC(),
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
