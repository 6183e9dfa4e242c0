package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api/metrics"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

const (
	msgAuthFailed     = "Authentication failed"
	msgRefreshed      = "Token refreshed successfully"
	msgRefreshFailed  = "Token refresh failed"
	msgEmailRequired  = "Email must be provided"
	msgResetFailed    = "An error occurred while resetting credentials"
	msgProtectedProbe = "This is a protected resource."

	// maxRefreshBody bounds the refresh payload; a token is far smaller.
	maxRefreshBody = 16 << 10
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  authResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return c.JSON(http.StatusUnauthorized, authResponse{Message: msgAuthFailed})
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		result := "error"
		switch {
		case errors.Is(err, domain.ErrLoginUserNotFound):
			result = "user_not_found"
		case errors.Is(err, domain.ErrInvalidCredentials):
			result = "invalid_credentials"
		default:
			h.log.Error().Err(err).Msg("login failed")
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return c.JSON(http.StatusUnauthorized, authResponse{Message: msgAuthFailed})
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Refresh exchanges a valid token for a new one with the same identity.
//
// The body is either {"oldToken": "<jwt>"} or the bare token.
//
// @Summary      Refresh a token
// @Tags         auth
// @Accept       json
// @Accept       plain
// @Produce      json
// @Param        body  body      refreshRequest  true  "Token to refresh"
// @Success      200   {object}  refreshResponse
// @Failure      403   {object}  refreshResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	oldToken, err := readRefreshToken(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusForbidden, refreshResponse{Message: msgRefreshFailed})
	}

	token, err := h.authService.Refresh(c.Request().Context(), oldToken)
	if err != nil {
		h.log.Debug().Err(err).Msg("token refresh rejected")
		return c.JSON(http.StatusForbidden, refreshResponse{Message: msgRefreshFailed})
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, refreshResponse{Token: token, Message: msgRefreshed})
}

// readRefreshToken accepts a JSON object with an oldToken field, a JSON
// string, or the raw token text.
func readRefreshToken(body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxRefreshBody))
	if err != nil {
		return "", err
	}
	raw = bytes.TrimSpace(raw)

	switch {
	case len(raw) == 0:
		return "", errors.New("empty body")
	case raw[0] == '{':
		var req refreshRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return "", err
		}
		return req.OldToken, nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	default:
		return string(raw), nil
	}
}

// ForgotLogin resets the username and/or password of the account owning an email.
//
// @Summary      Reset login credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotLoginRequest  true  "Email plus the new username and/or password"
// @Success      200   {object}  resetResponse
// @Failure      400   {object}  resetResponse
// @Failure      404   {object}  resetResponse
// @Failure      500   {object}  resetResponse
// @Router       /auth/forgotLogin [post]
func (h *AuthHandler) ForgotLogin(c echo.Context) error {
	var req forgotLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, resetResponse{Message: "invalid payload"})
	}

	res, err := h.authService.ResetCredentials(c.Request().Context(), ports.ResetCredentialsInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		var notFound *domain.EmailNotFoundError
		switch {
		case errors.Is(err, domain.ErrEmailRequired):
			return c.JSON(http.StatusBadRequest, resetResponse{Message: msgEmailRequired})
		case errors.As(err, &notFound):
			return c.JSON(http.StatusNotFound, resetResponse{Message: notFound.Error()})
		default:
			h.log.Error().Err(err).Msg("credential reset failed")
			return c.JSON(http.StatusInternalServerError, resetResponse{Message: msgResetFailed})
		}
	}

	return c.JSON(http.StatusOK, resetResponse{
		Email:    res.Email,
		Username: res.Username,
		Message:  res.Message,
	})
}

// Protected is a probe for role-gated access.
//
// @Summary      Protected probe
// @Tags         auth
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      403  {object}  map[string]string
// @Router       /auth/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	return c.String(http.StatusOK, msgProtectedProbe)
}
