// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LoginPath is the route unauthenticated requests to protected pages are sent to.
const LoginPath = "/api/auth/login"

// TokenCookie is the cookie that carries the JWT for browser clients.
const TokenCookie = "token"

// tokenFromRequest extracts the JWT from the Authorization header or,
// failing that, from the token cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(TokenCookie)
}

// parseUserID validates the token and extracts the user ID from the "sub"
// claim (subject claim per RFC 7519).
func parseUserID(tokenString, secret string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// loginRedirect sends the caller to the login page, preserving the intended
// destination in the next query parameter.
func loginRedirect(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect(LoginPath+"?next="+next, fiber.StatusFound)
}

// AuthRequired enforces authentication for protected routes. Missing or
// invalid credentials redirect to the login page with a next parameter
// pointing back at the requested URL; no mutation is ever reached.
func AuthRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return loginRedirect(c)
		}

		userID, ok := parseUserID(tokenString, cfg.JWTSecret)
		if !ok {
			return loginRedirect(c)
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// OptionalAuth populates the user ID when valid credentials are present but
// never blocks the request. Public views use it to personalize output
// (e.g. the profile page's follow status).
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if userID, ok := parseUserID(tokenString, cfg.JWTSecret); ok {
				c.Locals("userID", userID)
			}
		}
		return c.Next()
	}
}
