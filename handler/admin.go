package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pressroom/domain"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole is the only path that changes a user's role.
func (h *Handler) SetUserRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be READER, AUTHOR, EDITOR or ADMIN")
	}

	if err := h.Service.SetUserRole(c.Request().Context(), h.requester(c), c.Param("id"), role); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role updated"})
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *Handler) SetUserActive(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "isActive is required")
	}

	if err := h.Service.SetUserActive(c.Request().Context(), h.requester(c), c.Param("id"), *req.IsActive); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated"})
}

// Profile mirrors /auth/me for the users surface.
func (h *Handler) Profile(c echo.Context) error {
	return h.Me(c)
}
