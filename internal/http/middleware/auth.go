package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// UserIDLocalKey is the Fiber locals key holding the authenticated user id.
const UserIDLocalKey = "user_id"

// Authenticate verifies an HS256 bearer token and stores its subject, which
// must be a UUID, under UserIDLocalKey in canonical form. When issuer is
// non-empty the iss claim must match it.
// Failures are answered with fiber.ErrUnauthorized for the global error handler.
func Authenticate(secret []byte, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return fiber.ErrUnauthorized
		}

		tok, err := jwt.Parse([]byte(strings.TrimSpace(raw)),
			jwt.WithKey(jwa.HS256, secret),
			jwt.WithValidate(true),
		)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if issuer != "" {
			if err := jwt.Validate(tok, jwt.WithIssuer(issuer)); err != nil {
				return fiber.ErrUnauthorized
			}
		}
		// user ids are UUIDs in storage; anything else can never own a row
		sub, err := uuid.Parse(tok.Subject())
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(UserIDLocalKey, sub.String())
		return c.Next()
	}
}

// UserID returns the id stored by Authenticate, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
