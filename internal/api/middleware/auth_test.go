package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
	"github.com/userhub/auth-api/internal/core/service"
	"github.com/userhub/auth-api/internal/infrastructure/token"
)

const testSecret = "secret"

func newCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

// run sends a GET through Authenticate with the given Authorization header and
// returns the binding the handler saw.
func run(t *testing.T, codec ports.TokenCodec, header string) (authctx.Binding, bool, *authctx.Holder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		seen   authctx.Binding
		ok     bool
		holder *authctx.Holder
		called bool
	)
	handler := Authenticate(codec, zerolog.Nop())(func(c echo.Context) error {
		called = true
		holder = authctx.FromContext(c.Request().Context())
		seen, ok = authctx.Current(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return seen, ok, holder
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := newCodec(t)
	signed, err := codec.Issue("alice", []string{"ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	b, ok, holder := run(t, codec, "Bearer "+signed)
	if !ok {
		t.Fatalf("expected authenticated request")
	}
	if b.Principal != "alice" || !b.HasRole(domain.RoleAdmin) || b.Token != signed {
		t.Fatalf("unexpected binding: %+v", b)
	}

	// The binding does not outlive the request.
	if _, still := holder.Get(); still {
		t.Fatalf("holder must be cleared after the request")
	}
}

func TestAuthenticate_AnonymousCases(t *testing.T) {
	codec := newCodec(t)
	signed, _ := codec.Issue("alice", []string{"ADMIN"}, time.Hour)
	expired, _ := codec.Issue("alice", []string{"ADMIN"}, -time.Minute)

	cases := map[string]string{
		"missing header":   "",
		"basic scheme":     "Basic xyz",
		"lowercase bearer": "bearer " + signed,
		"no space":         "Bearer" + signed,
		"garbage token":    "Bearer not-a-token",
		"expired token":    "Bearer " + expired,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok, _ := run(t, codec, header); ok {
				t.Fatalf("expected anonymous request")
			}
		})
	}
}

func TestAuthenticate_BasicHeaderCannotPassAdminCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic xyz")
	c := e.NewContext(req, httptest.NewRecorder())

	policy := service.NewPolicy(nil)
	var checkErr error
	handler := Authenticate(newCodec(t), zerolog.Nop())(func(c echo.Context) error {
		checkErr = policy.RequireAdmin(c.Request().Context())
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !errors.Is(checkErr, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", checkErr)
	}
}

func TestAuthenticate_DropsUnknownRoles(t *testing.T) {
	codec := newCodec(t)
	signed, _ := codec.Issue("bob", []string{"SALES_CLERK", "SUPERUSER"}, time.Hour)

	b, ok, _ := run(t, codec, "Bearer "+signed)
	if !ok {
		t.Fatalf("expected authenticated request")
	}
	if len(b.Roles) != 1 || b.Roles[0] != domain.RoleSalesClerk {
		t.Fatalf("expected only SALES_CLERK, got %v", b.Roles)
	}
}

func TestAuthenticate_LogsGrantedAuthorities(t *testing.T) {
	codec := newCodec(t)
	signed, _ := codec.Issue("dora", []string{"ADMIN", "CUSTOMER"}, time.Hour)

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Authenticate(codec, log)(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"authorities":["ROLE_ADMIN","ROLE_CUSTOMER"]`) {
		t.Fatalf("expected granted authorities in debug log, got %q", out)
	}
	if strings.Contains(out, signed) {
		t.Fatalf("token must never be logged")
	}
}

func TestAuthenticate_MalformedRolesClaim(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "carol",
		"roles": 42,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, ok, _ := run(t, newCodec(t), "Bearer "+raw); ok {
		t.Fatalf("malformed roles must leave the request anonymous")
	}
}

type panickingCodec struct{}

func (panickingCodec) Issue(string, []string, time.Duration) (string, error) { return "", nil }
func (panickingCodec) Validate(string) bool { panic("boom") }
func (panickingCodec) Decode(string) (*domain.TokenClaims, error) { return nil, nil }

func TestAuthenticate_RecoversFromCodecPanic(t *testing.T) {
	if _, ok, _ := run(t, panickingCodec{}, "Bearer anything"); ok {
		t.Fatalf("expected anonymous request after panic")
	}
}
