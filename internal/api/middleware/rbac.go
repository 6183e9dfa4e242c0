package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
)

// authorityPrefix marks a role name in its granted-authority form.
const authorityPrefix = "ROLE_"

// Authority renders role as a granted authority, e.g. ROLE_ADMIN.
func Authority(role domain.Role) string {
	return authorityPrefix + role.String()
}

// ParseAuthority accepts a role either bare ("ADMIN") or in authority form
// ("ROLE_ADMIN").
func ParseAuthority(s string) (domain.Role, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(authorityPrefix) && strings.EqualFold(s[:len(authorityPrefix)], authorityPrefix) {
		s = s[len(authorityPrefix):]
	}
	return domain.ParseRole(s)
}

// RequireRole enforces role-based access control. Requests whose
// authentication binding holds none of allowed are rejected with 403,
// anonymous requests included.
func RequireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b, ok := authctx.Current(c.Request().Context())
			if ok {
				for _, r := range allowed {
					if b.HasRole(r) {
						return next(c)
					}
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
