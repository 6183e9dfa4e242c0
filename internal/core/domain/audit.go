package domain

import "time"

// AuditAction names an authentication or account operation worth recording.
type AuditAction string

const (
	AuditLogin           AuditAction = "login"
	AuditRefresh         AuditAction = "token_refresh"
	AuditCredentialReset AuditAction = "credential_reset"
	AuditRegister        AuditAction = "register"
	AuditProfileUpdate   AuditAction = "profile_update"
	AuditProfileDelete   AuditAction = "profile_delete"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditEvent is one entry of the authentication audit trail.
type AuditEvent struct {
	Action   AuditAction
	Username string
	Outcome  string
	Detail   string
	At       time.Time
}
