package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/utils"
)

// AuthHandler implements the admin login.  The hotel has a single admin
// credential (a bcrypt hash loaded from configuration); a successful
// login returns a short-lived HS256 access token with role=ADMIN that the
// JWTAuth middleware verifies on the admin routes.
type AuthHandler struct {
	JWTSecret    string // secret used to sign access tokens
	AdminHash    string // bcrypt hash of the admin password
	AccessTTLMin int    // token lifetime in minutes
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwtSecret, adminHash string, accessTTLMin int) *AuthHandler {
	return &AuthHandler{JWTSecret: jwtSecret, AdminHash: adminHash, AccessTTLMin: accessTTLMin}
}

// Login handles POST /v1/auth/login.  The body carries the admin
// password; a wrong password returns 401 without detail.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}
	if !utils.VerifyPassword(h.AdminHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, "admin", "ADMIN", h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
