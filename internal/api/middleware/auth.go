package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api/metrics"
	"github.com/userhub/auth-api/internal/core/authctx"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

const bearerPrefix = "Bearer "

// Filter outcomes, also used as metric label values.
const (
	outcomeAuthenticated = "authenticated"
	outcomeAnonymous     = "anonymous"
	outcomeInvalidToken  = "invalid_token"
	outcomeError         = "error"
)

// Authenticate attaches an authentication holder to every request and fills
// it when the request carries a valid bearer token. It never rejects a
// request: without a usable token the request simply continues anonymous,
// and access decisions are left to the role gates and services.
func Authenticate(codec ports.TokenCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, holder := authctx.WithHolder(req.Context())
			c.SetRequest(req.WithContext(ctx))
			defer holder.Clear()

			outcome := authenticate(codec, log, req.Header.Get(echo.HeaderAuthorization), holder)
			metrics.FilterOutcomesTotal.WithLabelValues(outcome).Inc()

			return next(c)
		}
	}
}

// authenticate runs the token checks and reports the outcome. Failures of
// any kind, including panics from the codec, leave the holder empty.
func authenticate(codec ports.TokenCodec, log zerolog.Logger, header string, holder *authctx.Holder) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			holder.Clear()
			log.Error().Err(fmt.Errorf("panic: %v", r)).Msg("authentication filter failed")
			outcome = outcomeError
		}
	}()

	if !strings.HasPrefix(header, bearerPrefix) {
		return outcomeAnonymous
	}
	token := header[len(bearerPrefix):]

	if !codec.Validate(token) {
		log.Debug().Msg("rejected bearer token")
		return outcomeInvalidToken
	}

	claims, err := codec.Decode(token)
	if err != nil {
		log.Error().Err(err).Msg("could not decode validated token")
		return outcomeError
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, name := range claims.Roles {
		role, ok := domain.ParseRole(name)
		if !ok {
			log.Warn().Str("role", name).Str("username", claims.Subject).Msg("dropping unknown role claim")
			continue
		}
		roles = append(roles, role)
	}

	holder.Set(claims.Subject, roles, token)
	if e := log.Debug(); e.Enabled() {
		authorities := make([]string, 0, len(roles))
		for _, r := range roles {
			authorities = append(authorities, Authority(r))
		}
		e.Str("username", claims.Subject).Strs("authorities", authorities).Msg("request authenticated")
	}
	return outcomeAuthenticated
}
