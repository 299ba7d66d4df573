package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"pressroom/domain"
)

const tokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role.String(),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, hash, err := h.Store.GetCredentials(c.Request().Context(), req.Email)
	if err != nil || !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := h.Store.TouchLastLogin(c.Request().Context(), user.ID); err != nil {
		c.Logger().Error(err)
	}

	token, cookie, err := h.mintToken(user.ID)
	if err != nil {
		return httpError(c, err)
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    toUserResponse(user),
		"token":   token,
	})
}

// Signup creates a READER account. Gated off outside dev unless
// ENABLE_SIGNUP is set; real deployments provision users through OIDC.
func (h *Handler) Signup(c echo.Context) error {
	if h.Environment != "dev" && !h.EnableSignup {
		return echo.NewHTTPError(http.StatusForbidden, "sign up has been disabled")
	}

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if req.Name == "" {
		req.Name = req.Email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpError(c, err)
	}

	user := &domain.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Name:     req.Name,
		Role:     domain.RoleReader,
		IsActive: true,
	}
	if err := h.Store.CreateUser(c.Request().Context(), user, string(hash)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return httpError(c, err)
	}

	token, cookie, err := h.mintToken(user.ID)
	if err != nil {
		return httpError(c, err)
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Account created",
		"user":    toUserResponse(user),
		"token":   token,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(-time.Second),
	}
	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handler) Me(c echo.Context) error {
	user := h.requester(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) mintToken(userID string) (string, *http.Cookie, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["userID"] = userID
	exp := time.Now().Add(tokenTTL)
	claims["exp"] = exp.Unix()

	signed, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Environment != "dev",
		Expires:  exp,
	}
	return signed, cookie, nil
}

// requester resolves the caller's identity from the bearer token or
// auth cookie and loads the user fresh, so role changes and
// deactivation take effect immediately. Returns nil for anonymous or
// invalid tokens; the service decides what that means per operation.
func (h *Handler) requester(c echo.Context) *domain.User {
	userID := h.tokenUserID(c)
	if userID == "" {
		return nil
	}
	user, err := h.Store.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func (h *Handler) tokenUserID(c echo.Context) string {
	if h.JWTSecret == "" {
		return ""
	}

	raw := ""
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if cookie, err := c.Cookie("auth_token"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		return ""
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	userID, _ := claims["userID"].(string)
	return userID
}
