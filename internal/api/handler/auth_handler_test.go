package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, username, password string) (*ports.AuthResult, error)
	refreshFn func(ctx context.Context, oldToken string) (string, error)
	resetFn   func(ctx context.Context, in ports.ResetCredentialsInput) (*ports.ResetResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, oldToken string) (string, error) {
	return s.refreshFn(ctx, oldToken)
}

func (s *stubAuthService) ResetCredentials(ctx context.Context, in ports.ResetCredentialsInput) (*ports.ResetResult, error) {
	return s.resetFn(ctx, in)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*ports.AuthResult, error) {
			if username != "carol" || password != "s3cret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.AuthResult{
				User: &domain.User{
					ID: "u1", FirstName: "Carol", LastName: "King", Phone: "+6511111111",
					Address: "1 Main St", Email: "carol@example.com", Username: "carol", Role: domain.RoleAdmin,
				},
				Token:   "tok",
				Message: "Authentication successful",
			}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"username":"carol","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	want := map[string]any{
		"userId": "u1", "firstName": "Carol", "lastName": "King", "phone": "+6511111111",
		"address": "1 Main St", "email": "carol@example.com", "username": "carol",
		"role": "ADMIN", "token": "tok", "message": "Authentication successful",
	}
	for k, v := range want {
		if resp[k] != v {
			t.Fatalf("field %s: expected %v, got %v", k, v, resp[k])
		}
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	for _, failure := range []error{domain.ErrLoginUserNotFound, domain.ErrInvalidCredentials, errors.New("db down")} {
		stub := &stubAuthService{
			loginFn: func(context.Context, string, string) (*ports.AuthResult, error) { return nil, failure },
		}
		h := NewAuthHandler(stub, zerolog.Nop())

		c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"username":"x","password":"y"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", failure, rec.Code)
		}

		resp := decodeBody(t, rec)
		token, present := resp["token"]
		if !present || token != nil {
			t.Fatalf("expected explicit null token, got %v", resp)
		}
		if resp["message"] != "Authentication failed" {
			t.Fatalf("unexpected message %v", resp["message"])
		}
	}
}

func TestAuthHandler_Refresh_BodyFormats(t *testing.T) {
	cases := map[string]string{
		"json object": `{"oldToken":"old.jwt.value"}`,
		"json string": `"old.jwt.value"`,
		"raw text":    "  old.jwt.value\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var got string
			stub := &stubAuthService{
				refreshFn: func(_ context.Context, oldToken string) (string, error) {
					got = oldToken
					return "new.jwt.value", nil
				},
			}
			h := NewAuthHandler(stub, zerolog.Nop())

			c, rec := newJSONContext(http.MethodPost, "/auth/refresh", body)
			if err := h.Refresh(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if got != "old.jwt.value" {
				t.Fatalf("service received %q", got)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			resp := decodeBody(t, rec)
			if resp["token"] != "new.jwt.value" || resp["message"] != "Token refreshed successfully" {
				t.Fatalf("unexpected body %v", resp)
			}
		})
	}
}

func TestAuthHandler_Refresh_Failure(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(context.Context, string) (string, error) { return "", domain.ErrInvalidToken },
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	for _, body := range []string{`{"oldToken":"expired"}`, ""} {
		c, rec := newJSONContext(http.MethodPost, "/auth/refresh", body)
		if err := h.Refresh(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("body %q: expected 403, got %d", body, rec.Code)
		}
		if resp := decodeBody(t, rec); resp["message"] != "Token refresh failed" {
			t.Fatalf("unexpected body %v", resp)
		}
	}
}

func TestAuthHandler_ForgotLogin(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"success", nil, http.StatusOK, "Updated user credential successfully!"},
		{"blank email", domain.ErrEmailRequired, http.StatusBadRequest, "Email must be provided"},
		{"unknown email", &domain.EmailNotFoundError{Email: "a@b.c"}, http.StatusNotFound, "a@b.c not found in DB"},
		{"save failure", errors.New("failed to update user credentials: boom"), http.StatusInternalServerError, "An error occurred while resetting credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthService{
				resetFn: func(_ context.Context, in ports.ResetCredentialsInput) (*ports.ResetResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &ports.ResetResult{Email: in.Email, Username: in.Username, Message: "Updated user credential successfully!"}, nil
				},
			}
			h := NewAuthHandler(stub, zerolog.Nop())

			c, rec := newJSONContext(http.MethodPost, "/auth/forgotLogin", `{"email":"a@b.c","username":"neo"}`)
			if err := h.ForgotLogin(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			resp := decodeBody(t, rec)
			if resp["message"] != tt.message {
				t.Fatalf("unexpected message %v", resp["message"])
			}
			if tt.err == nil && (resp["email"] != "a@b.c" || resp["username"] != "neo") {
				t.Fatalf("unexpected body %v", resp)
			}
		})
	}
}

func TestAuthHandler_Protected(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, zerolog.Nop())
	c, rec := newJSONContext(http.MethodGet, "/auth/protected", "")
	if err := h.Protected(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "This is a protected resource." {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
