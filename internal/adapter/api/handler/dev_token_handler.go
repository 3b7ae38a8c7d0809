package handler

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"otomart/pkg/response"
)

// DevTokenHandler mints short-lived HS256 tokens for local development,
// where real Firebase credentials are unavailable. The router only mounts it
// when ENVIRONMENT=development.
type DevTokenHandler struct {
	secret string
}

func NewDevTokenHandler(secret string) *DevTokenHandler {
	return &DevTokenHandler{secret: secret}
}

type devTokenRequest struct {
	UID string `json:"uid" validate:"required"`
}

func (h *DevTokenHandler) CreateToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	claims := jwt.MapClaims{
		"uid": req.UID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"token": signed,
		"uid":   req.UID,
	})
}
