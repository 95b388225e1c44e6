package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/service"
	"github.com/gofiber/fiber/v2"
)

const localPrincipal = "principal"

// SecurityHeaders disables caching on every response and pins content-type
// sniffing, matching the contract on state-changing and health endpoints.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		return c.Next()
	}
}

// RequestLogger is the single instrumentation boundary: one record per
// request with the logical operation, status, and duration.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// BasicAuthMiddleware authenticates every protected request from its Basic
// credentials and stashes the canonical principal (the email) in Locals.
// Unknown email and wrong password are indistinguishable to the caller.
func BasicAuthMiddleware(userService service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Basic")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing authentication credentials!"})
		}

		user, err := userService.Authenticate(c.Context(), email, password)
		if err != nil {
			switch {
			case errors.Is(err, apperr.ErrUnauthorized):
				c.Set(fiber.HeaderWWWAuthenticate, "Basic")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authentication credentials!"})
			case errors.Is(err, apperr.ErrForbidden):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Email not verified!"})
			default:
				return c.SendStatus(fiber.StatusServiceUnavailable)
			}
		}

		c.Locals(localPrincipal, user.Email)

		return c.Next()
	}
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	creds := string(decoded)
	idx := strings.IndexByte(creds, ':')
	if idx < 0 {
		return "", "", false
	}

	return strings.TrimSpace(creds[:idx]), strings.TrimSpace(creds[idx+1:]), true
}
