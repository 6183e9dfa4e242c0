package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api/handler"
	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
	"github.com/userhub/auth-api/internal/core/service"
	"github.com/userhub/auth-api/internal/infrastructure/token"
)

// bindingUserService answers from the request's authentication binding so the
// router test can observe what the filter attached.
type bindingUserService struct {
	ports.UserService
}

func (bindingUserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	b, ok := authctx.Current(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return &domain.User{ID: "u1", Username: b.Principal, Role: b.Roles[0]}, nil
}

func (bindingUserService) ViewProfile(ctx context.Context, id string) (*domain.User, error) {
	if _, ok := authctx.Current(ctx); !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return nil, domain.ErrUserNotFound
}

// TestRouter builds the router once: the echoprometheus middleware registers
// its collectors with the default registry.
func TestRouter(t *testing.T) {
	codec, err := token.NewCodec("router-test-secret")
	if err != nil {
		t.Fatal(err)
	}
	e := NewRouter(Deps{
		UserService: bindingUserService{},
		Identity:    service.NewPolicy(nil),
		Codec:       codec,
		Probes:      map[string]handler.Pinger{},
		CORSOrigins: []string{"*"},
		Logger:      zerolog.Nop(),
	})

	bearer := func(username string, role domain.Role) string {
		tok, err := codec.Issue(username, []string{role.String()}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		code   int
		body   string
	}{
		{"liveness", http.MethodGet, "/health", "", http.StatusOK, `"ok"`},
		{"readiness", http.MethodGet, "/health/ready", "", http.StatusOK, `"ok"`},
		{"protected anonymous", http.MethodGet, "/auth/protected", "", http.StatusForbidden, "forbidden"},
		{"protected customer", http.MethodGet, "/auth/protected", bearer("neo", domain.RoleCustomer), http.StatusOK, "This is a protected resource."},
		{"protected plain user", http.MethodGet, "/auth/protected", bearer("trinity", domain.RoleUser), http.StatusForbidden, "forbidden"},
		{"users me gated", http.MethodGet, "/users/me", bearer("trinity", domain.RoleUser), http.StatusForbidden, "forbidden"},
		{"users me admin", http.MethodGet, "/users/me", bearer("morpheus", domain.RoleAdmin), http.StatusOK, `"username":"morpheus"`},
		{"me ungated", http.MethodGet, "/me", bearer("trinity", domain.RoleUser), http.StatusOK, `"role":"USER"`},
		{"me anonymous", http.MethodGet, "/me", "", http.StatusForbidden, "user not authenticated"},
		{"basic auth is anonymous", http.MethodGet, "/users/u1", "Basic xyz", http.StatusForbidden, "user not authenticated"},
		{"missing user", http.MethodGet, "/users/u9", bearer("morpheus", domain.RoleAdmin), http.StatusNotFound, "user not found"},
		{"username", http.MethodGet, "/me/username", bearer("neo", domain.RoleCustomer), http.StatusOK, "neo"},
		{"has role prefixed", http.MethodGet, "/me/has-role/ROLE_ADMIN", bearer("morpheus", domain.RoleAdmin), http.StatusOK, "true"},
		{"has role other", http.MethodGet, "/me/has-role/SALES_CLERK", bearer("morpheus", domain.RoleAdmin), http.StatusOK, "false"},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, "Not Found"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "auth_api_"},
		{"filter metric name", http.MethodGet, "/metrics", "", http.StatusOK, "auth_api_filter_outcomes_total{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d (%s)", tt.code, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Fatalf("body %q should contain %q", rec.Body.String(), tt.body)
			}
			if strings.Contains(rec.Body.String(), "auth_api_auth_") {
				t.Fatalf("metric names must not repeat the namespace")
			}
			if rec.Header().Get(echo.HeaderXRequestID) == "" {
				t.Fatalf("expected a request id header")
			}
		})
	}
}
