package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"pressroom/domain"
	"pressroom/service"
	"pressroom/store"
)

type Handler struct {
	Service      *service.Service
	Store        *store.Store
	JWTSecret    string
	EnableSignup bool
	Environment  string
}

// httpError maps the domain error taxonomy onto HTTP statuses. Storage
// and other internal faults become an opaque 500; the handler logs the
// detail, the caller never sees it.
func httpError(c echo.Context, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrSpaceUnbound):
		return echo.NewHTTPError(http.StatusForbidden, "space posts require space membership")
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		c.Logger().Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// HTTPErrorHandler is installed on the echo instance. It runs the same
// taxonomy mapping as httpError for domain errors that reach echo
// unmapped, and renders every error as the JSON error envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		he, _ = httpError(c, err).(*echo.HTTPError)
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(he.Code, map[string]any{
		"error": map[string]any{
			"message":    fmt.Sprintf("%v", he.Message),
			"statusCode": he.Code,
		},
	}); err != nil {
		c.Logger().Error(err)
	}
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.Service.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
