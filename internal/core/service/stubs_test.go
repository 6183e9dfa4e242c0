package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/infrastructure/password"
	"github.com/userhub/auth-api/internal/infrastructure/token"
)

// ---------------------------------------------------------------------------
// In-memory stub user directory
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu          sync.Mutex
	byID        map[string]*domain.User
	nextID      int
	updateCalls int
	updateErr   error // if set, Update returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, fmt.Errorf("duplicate username: %w", domain.ErrConflict)
		}
		if u.Email == user.Email {
			return nil, fmt.Errorf("duplicate email: %w", domain.ErrConflict)
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.nextID)
	r.byID[c.ID] = cloneUser(c)
	return c, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.byID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

// ---------------------------------------------------------------------------
// Audit recorder stub
// ---------------------------------------------------------------------------

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}

func (a *stubAudit) last() (domain.AuditEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return domain.AuditEvent{}, false
	}
	return a.events[len(a.events)-1], true
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const testSecret = "test-secret"

type fixture struct {
	repo   *stubUserRepo
	audit  *stubAudit
	codec  *token.Codec
	hasher *password.BcryptHasher
	auth   *AuthService
	users  *UserService
	policy *Policy
}

func newFixture(t *testing.T, opts ...token.Option) *fixture {
	t.Helper()
	codec, err := token.NewCodec(testSecret, opts...)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	f := &fixture{
		repo:   newStubUserRepo(),
		audit:  &stubAudit{},
		codec:  codec,
		hasher: password.NewBcryptHasher(bcrypt.MinCost),
	}
	f.policy = NewPolicy(f.repo)
	ttls := TokenTTLs{Access: time.Hour, Refresh: 24 * time.Hour}
	f.auth = NewAuthService(f.repo, f.codec, f.hasher, f.audit, ttls, zerolog.Nop())
	f.users = NewUserService(f.repo, f.codec, f.hasher, f.policy, f.audit, ttls.Access, zerolog.Nop())
	return f
}

// seed stores a user directly with a hashed password.
func (f *fixture) seed(t *testing.T, username, email, secret string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(secret)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := f.repo.Create(context.Background(), &domain.User{
		FirstName:    "First",
		LastName:     "Last",
		Username:     username,
		Email:        email,
		Phone:        "555-0100",
		Address:      "1 Main St",
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

// as returns a context authenticated as u, plus its holder.
func as(u *domain.User) (context.Context, *authctx.Holder) {
	ctx, h := authctx.WithHolder(context.Background())
	h.Set(u.Username, []domain.Role{u.Role}, "tok")
	return ctx, h
}
