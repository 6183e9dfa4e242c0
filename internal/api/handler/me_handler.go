package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/auth-api/internal/api/middleware"
	"github.com/userhub/auth-api/internal/core/ports"
)

// MeHandler answers identity questions about the caller.
type MeHandler struct {
	identity ports.Identity
}

func NewMeHandler(identity ports.Identity) *MeHandler {
	return &MeHandler{identity: identity}
}

// Username returns the caller's username as plain text.
//
// @Summary      Authenticated username
// @Tags         me
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      403  {object}  errorResponse
// @Router       /me/username [get]
func (h *MeHandler) Username(c echo.Context) error {
	username, err := h.identity.AuthenticatedUsername(c.Request().Context())
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, username)
}

// HasRole reports whether the caller holds a role, given bare or ROLE_-prefixed.
// Unknown roles are never held.
//
// @Summary      Check a role
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role, e.g. ADMIN or ROLE_ADMIN"
// @Success      200   {boolean} bool
// @Router       /me/has-role/{role} [get]
func (h *MeHandler) HasRole(c echo.Context) error {
	role, ok := middleware.ParseAuthority(c.Param("role"))
	if !ok {
		return c.JSON(http.StatusOK, false)
	}
	return c.JSON(http.StatusOK, h.identity.HasRole(c.Request().Context(), role))
}
