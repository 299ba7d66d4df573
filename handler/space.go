package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"pressroom/domain"
)

type spaceResponse struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toSpaceResponse(sp *domain.Space) spaceResponse {
	return spaceResponse{
		ID:          sp.ID,
		Key:         sp.Key,
		Name:        sp.Name,
		Description: sp.Description,
		IsPublic:    sp.IsPublic,
		MemberCount: sp.MemberCount,
		CreatedAt:   sp.CreatedAt,
	}
}

type createSpaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

func (h *Handler) CreateSpace(c echo.Context) error {
	var req createSpaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	sp, err := h.Service.CreateSpace(c.Request().Context(), h.requester(c), req.Name, req.Description, req.IsPublic)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return echo.NewHTTPError(http.StatusConflict, "a space with that name already exists")
		}
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"space": toSpaceResponse(sp)})
}

func (h *Handler) GetSpaces(c echo.Context) error {
	spaces, err := h.Service.ListSpaces(c.Request().Context(), h.requester(c))
	if err != nil {
		return httpError(c, err)
	}
	out := make([]spaceResponse, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, toSpaceResponse(sp))
	}
	return c.JSON(http.StatusOK, map[string]any{"spaces": out})
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) AddSpaceMember(c echo.Context) error {
	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	err := h.Service.AddSpaceMember(c.Request().Context(), h.requester(c), c.Param("id"), req.UserID, req.Role)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Member added"})
}
