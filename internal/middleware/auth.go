// Package middleware provides authentication, logging, and rate limiting
// middleware for the application.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthCookie is the cookie carrying the session token for browser-style clients.
const AuthCookie = "quill_token"

// LoginRoute is where unauthenticated requests to protected routes are sent.
const LoginRoute = "/auth/login"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// CurrentUser extracts and validates the caller's identity from the auth
// cookie or a bearer Authorization header. It returns (0, false) when no
// valid token is present.
func CurrentUser(c *fiber.Ctx) (uint, bool) {
	tokenString := c.Cookies(AuthCookie)
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return 0, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	// User ID travels in the "sub" claim (RFC 7519 subject).
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, false
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint(userID), true
}

// LoginRequired enforces authentication for protected routes. Unauthenticated
// callers are redirected to the login route with a `next` parameter preserving
// the original path, mirroring classic server-rendered app behavior.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUser(c)
		if !ok {
			next := url.QueryEscape(c.OriginalURL())
			return c.Redirect(LoginRoute+"?next="+next, fiber.StatusFound)
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// OptionalUser resolves the caller's identity when a valid token is present
// but lets anonymous requests through. Used on routes whose response varies
// with authentication (the profile "following" flag).
func OptionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := CurrentUser(c); ok {
			c.Locals("userID", userID)
		}
		return c.Next()
	}
}
