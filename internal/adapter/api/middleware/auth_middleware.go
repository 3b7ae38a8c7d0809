package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the authenticated user id for every request. The
// messaging core performs no authentication itself; it trusts the uid this
// boundary produces.
type AuthMiddleware struct {
	authClient  *auth.Client
	devSecret   string
	environment string
}

func NewAuthMiddleware(authClient *auth.Client, devSecret, environment string) *AuthMiddleware {
	return &AuthMiddleware{
		authClient:  authClient,
		devSecret:   devSecret,
		environment: environment,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization token is required")
		}

		uid, err := m.resolveUID(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// extractToken reads the bearer header, falling back to the token query
// parameter for websocket upgrades where browsers cannot set headers.
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	return c.QueryParam("token")
}

func (m *AuthMiddleware) resolveUID(ctx context.Context, token string) (string, error) {
	verified, err := m.authClient.VerifyIDToken(ctx, token)
	if err == nil {
		return verified.UID, nil
	}

	// Local development runs without real Firebase credentials; accept the
	// HS256 dev token minted by the dev endpoint instead.
	if m.environment == "development" && m.devSecret != "" {
		if uid, devErr := m.parseDevToken(token); devErr == nil {
			return uid, nil
		}
	}

	return "", err
}

func (m *AuthMiddleware) parseDevToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.devSecret), nil
	})
	if err != nil {
		return "", err
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return uid, nil
}
