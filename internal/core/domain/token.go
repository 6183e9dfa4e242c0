package domain

import "time"

// TokenClaims is the decoded payload of a session token.
type TokenClaims struct {
	ID        string
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
