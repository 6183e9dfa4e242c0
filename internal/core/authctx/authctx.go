// Package authctx carries the caller's verified identity through a request.
//
// The request filter attaches one Holder per request with WithHolder, fills
// it when a valid bearer token is presented and clears it when the request
// ends. Services read it back with Current. A request without a holder, or
// with an empty one, is anonymous.
package authctx

import (
	"context"
	"sync"

	"github.com/userhub/auth-api/internal/core/domain"
)

type holderKey struct{}

// Binding is the authenticated identity of a single request.
type Binding struct {
	Principal string
	Roles     []domain.Role
	Token     string
}

// HasRole reports whether the binding was granted role.
func (b Binding) HasRole(role domain.Role) bool {
	return domain.ContainsRole(b.Roles, role)
}

// Holder stores at most one Binding for the request that owns it.
type Holder struct {
	mu      sync.RWMutex
	binding *Binding
}

// WithHolder returns a child context carrying a fresh, empty Holder.
func WithHolder(ctx context.Context) (context.Context, *Holder) {
	h := &Holder{}
	return context.WithValue(ctx, holderKey{}, h), h
}

// FromContext returns the Holder attached to ctx, or nil.
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(holderKey{}).(*Holder)
	return h
}

// Current returns the binding of the request behind ctx, if any.
func Current(ctx context.Context) (Binding, bool) {
	return FromContext(ctx).Get()
}

// Set replaces the binding.
func (h *Holder) Set(principal string, roles []domain.Role, token string) {
	if h == nil {
		return
	}
	b := &Binding{
		Principal: principal,
		Roles:     append([]domain.Role(nil), roles...),
		Token:     token,
	}
	h.mu.Lock()
	h.binding = b
	h.mu.Unlock()
}

// Get returns a copy of the binding and whether one is present.
func (h *Holder) Get() (Binding, bool) {
	if h == nil {
		return Binding{}, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.binding == nil {
		return Binding{}, false
	}
	b := *h.binding
	b.Roles = append([]domain.Role(nil), h.binding.Roles...)
	return b, true
}

// Clear drops the binding.
func (h *Holder) Clear() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.binding = nil
	h.mu.Unlock()
}
