package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/utils"
)

const userIDKey = "userID"

// Auth verifies the bearer token and puts the user id on the context.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing or invalid authorization header"})
			}

			claims, err := utils.ValidateJWT(secret, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// BearerToken reads the Authorization header, or the token query parameter that browsers
// use for websocket upgrades.
func BearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return c.QueryParam("token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// UserID returns the authenticated user id, or "".
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
