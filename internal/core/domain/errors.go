package domain

import "errors"

// Error categories. Every concrete error below unwraps to exactly one of them,
// so callers can branch either on the category or on the specific cause.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication failed")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrEmailRequired = categorized(ErrInvalidInput, "email must be provided")

	ErrUserNotFound       = categorized(ErrNotFound, "user not found")
	ErrLoginUserNotFound  = categorized(ErrUnauthenticated, "user not found")
	ErrInvalidCredentials = categorized(ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = categorized(ErrUnauthenticated, "invalid or expired token")
	ErrMalformedClaim     = categorized(ErrUnauthenticated, "roles claim is missing or invalid")

	ErrUsernameExists = categorized(ErrConflict, "username already exists")
	ErrEmailExists    = categorized(ErrConflict, "email already exists")

	ErrNotAuthenticated = categorized(ErrAccessDenied, "user not authenticated")
	ErrAdminOnly        = categorized(ErrAccessDenied, "only admins can access this resource")
	ErrNotSelfOrAdmin   = categorized(ErrAccessDenied, "you are not authorized to access this data")
)

type categoryError struct {
	msg      string
	category error
}

func categorized(category error, msg string) error {
	return &categoryError{msg: msg, category: category}
}

func (e *categoryError) Error() string { return e.msg }
func (e *categoryError) Unwrap() error { return e.category }

// EmailNotFoundError is returned by credential reset when no user owns Email.
// Its message echoes the address back to the caller.
type EmailNotFoundError struct {
	Email string
}

func (e *EmailNotFoundError) Error() string {
	return e.Email + " not found in DB"
}

func (e *EmailNotFoundError) Unwrap() error { return ErrNotFound }
