package gateway

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/relay/pkg/llm"
)

// Credential check failures. Missing maps to 401, invalid to 403.
var (
	ErrCredentialMissing = errors.New("missing api credential")
	ErrCredentialInvalid = errors.New("invalid api credential")
)

// verifyCredential validates the caller's credential against the configured
// secret. Callers may present either an X-API-Key header or a bearer
// Authorization header; the X-API-Key header is checked first.
func verifyCredential(apiKey, authHeader, secret string) error {
	presented := false

	if apiKey != "" {
		presented = true
		if apiKey == secret {
			return nil
		}
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		presented = true
		if strings.TrimPrefix(authHeader, "Bearer ") == secret {
			return nil
		}
	}

	if !presented {
		return ErrCredentialMissing
	}
	return ErrCredentialInvalid
}

// requireAPIKey guards a route. It rejects before any upstream work happens,
// so a bad credential never consumes backend resources.
func (g *Gateway) requireAPIKey(c *fiber.Ctx) error {
	err := verifyCredential(c.Get("X-API-Key"), c.Get(fiber.HeaderAuthorization), g.config.Auth.APIKey)
	switch {
	case err == nil:
		return c.Next()
	case errors.Is(err, ErrCredentialMissing):
		return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: "missing API key"})
	default:
		return c.Status(fiber.StatusForbidden).JSON(llm.ErrorResponse{Error: "invalid API key"})
	}
}
