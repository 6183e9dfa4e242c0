package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api/metrics"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

const defaultUserTTL = 5 * time.Minute

// CachedUserRepository decorates a ports.UserRepository with a Redis
// read-through cache for lookups by id and username.
//
// Key format: user:id:<id> and user:username:<username>
//
// Redis failures never fail a call; the request falls through to the store.
type CachedUserRepository struct {
	next   ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedUserRepository(next ports.UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &CachedUserRepository{next: next, client: client, ttl: ttl, log: log}
}

// cachedUser is the cache encoding of domain.User. Unlike the domain type it
// keeps the password hash, which login needs.
type cachedUser struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func idKey(id string) string             { return "user:id:" + id }
func usernameKey(username string) string { return "user:username:" + username }

func (c *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := c.get(ctx, idKey(id)); ok {
		return u, nil
	}
	u, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, u)
	return u, nil
}

func (c *CachedUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := c.get(ctx, usernameKey(username)); ok {
		return u, nil
	}
	u, err := c.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	c.put(ctx, u)
	return u, nil
}

func (c *CachedUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return c.next.FindByEmail(ctx, email)
}

func (c *CachedUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return c.next.ExistsByUsername(ctx, username)
}

func (c *CachedUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return c.next.ExistsByEmail(ctx, email)
}

func (c *CachedUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return c.next.List(ctx)
}

func (c *CachedUserRepository) Count(ctx context.Context) (int64, error) {
	return c.next.Count(ctx)
}

func (c *CachedUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.next.Create(ctx, user)
}

// Update writes through to the store and evicts the keys of both the previous
// and the new username.
func (c *CachedUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	keys := []string{idKey(user.ID), usernameKey(user.Username)}
	if prev, err := c.next.FindByID(ctx, user.ID); err == nil && prev.Username != user.Username {
		keys = append(keys, usernameKey(prev.Username))
	}

	updated, err := c.next.Update(ctx, user)
	c.evict(ctx, keys...)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *CachedUserRepository) Delete(ctx context.Context, id string) error {
	keys := []string{idKey(id)}
	if prev, err := c.next.FindByID(ctx, id); err == nil {
		keys = append(keys, usernameKey(prev.Username))
	}

	err := c.next.Delete(ctx, id)
	c.evict(ctx, keys...)
	return err
}

func (c *CachedUserRepository) get(ctx context.Context, key string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.UserCacheRequestsTotal.WithLabelValues("miss").Inc()
		} else {
			metrics.UserCacheRequestsTotal.WithLabelValues("error").Inc()
			c.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
		}
		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		metrics.UserCacheRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("user cache entry corrupt")
		c.evict(ctx, key)
		return nil, false
	}

	metrics.UserCacheRequestsTotal.WithLabelValues("hit").Inc()
	return &domain.User{
		ID:           cu.ID,
		FirstName:    cu.FirstName,
		LastName:     cu.LastName,
		Phone:        cu.Phone,
		Address:      cu.Address,
		Email:        cu.Email,
		Username:     cu.Username,
		PasswordHash: cu.PasswordHash,
		Role:         domain.Role(cu.Role),
		CreatedAt:    cu.CreatedAt,
		UpdatedAt:    cu.UpdatedAt,
	}, true
}

func (c *CachedUserRepository) put(ctx context.Context, u *domain.User) {
	raw, err := json.Marshal(cachedUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Address:      u.Address,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role.String(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache encode failed")
		return
	}

	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, idKey(u.ID), raw, c.ttl)
		p.Set(ctx, usernameKey(u.Username), raw, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache write failed")
	}
}

func (c *CachedUserRepository) evict(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(fmt.Errorf("evict %v: %w", keys, err)).Msg("user cache eviction failed")
	}
}
