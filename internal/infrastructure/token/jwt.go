package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/userhub/auth-api/internal/core/domain"
)

const rolesClaim = "roles"

// Codec implements ports.TokenCodec with HS256-signed JWTs.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithIssuer sets the iss claim written on issue and required on parse.
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = issuer }
}

// NewCodec returns a Codec signing with secret. The secret is copied and never
// changes afterwards.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subject carrying roles, valid for ttl.
func (c *Codec) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub":      subject,
		rolesClaim: append([]string{}, roles...),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"jti":      uuid.NewString(),
	}
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports whether token carries a valid signature and has not expired.
func (c *Codec) Validate(token string) bool {
	_, err := c.parse(token)
	return err == nil
}

// Decode verifies token and extracts its claims. A roles claim that is absent
// or not a list yields domain.ErrMalformedClaim, and so does a list holding
// any non-string element: such elements are rejected rather than stringified.
// Every other failure yields domain.ErrInvalidToken.
func (c *Codec) Decode(token string) (*domain.TokenClaims, error) {
	claims, err := c.parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	roles, err := rolesFrom(claims)
	if err != nil {
		return nil, err
	}

	out := &domain.TokenClaims{Subject: sub, Roles: roles}
	if jti, ok := claims["jti"].(string); ok {
		out.ID = jti
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func (c *Codec) parse(token string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func rolesFrom(claims jwt.MapClaims) ([]string, error) {
	raw, ok := claims[rolesClaim]
	if !ok {
		return nil, domain.ErrMalformedClaim
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: got %T", domain.ErrMalformedClaim, raw)
	}
	roles := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element of type %T", domain.ErrMalformedClaim, item)
		}
		roles = append(roles, s)
	}
	return roles, nil
}
