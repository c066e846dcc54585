package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the credential payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token back to the caller.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler serves the login endpoint against a single configured operator
// account.
type Handler struct {
	issuer   *TokenIssuer
	user     string
	password string
}

func NewHandler(issuer *TokenIssuer, user, password string) *Handler {
	return &Handler{issuer: issuer, user: user, password: password}
}

// Register mounts the auth routes.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/auth/login", h.Login)
}

// Login exchanges valid credentials for a bearer token.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expires, err := h.issuer.Issue(req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires,
	})
}
