package middleware

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/token"
)

// AuthUserLocalKey is the key under which the authenticated user is stored in
// Fiber's context locals. Handlers read it via AuthenticatedUser.
const AuthUserLocalKey = "auth_user"

// AuthenticatedUser returns the user attached by RequireAuth, or nil when the
// request did not pass through it.
func AuthenticatedUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(AuthUserLocalKey).(*model.User)
	return u
}

// RequireAuth extracts a bearer token from the Authorization header, verifies
// it, loads the referenced user, and attaches it to the request context.
// Any failure ends the request with 401. A valid token whose user no longer
// exists is rejected the same way: token validity does not guarantee account
// existence.
func RequireAuth(tokens *token.Service, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "MISSING_TOKEN", "no token, authorization denied")
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header || tokenStr == "" {
			return unauthorized(c, "MISSING_TOKEN", "no token, authorization denied")
		}

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token is not valid")
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return unauthorized(c, "INVALID_TOKEN", "token is not valid")
			}
			return internalError(c)
		}

		c.Locals(AuthUserLocalKey, user)
		return c.Next()
	}
}

// unauthorized writes the standard error envelope with a 401 status.
// Kept local to avoid coupling middleware to the handler package.
func unauthorized(c *fiber.Ctx, code, message string) error {
	return writeErrorEnvelope(c, fiber.StatusUnauthorized, code, message)
}

func internalError(c *fiber.Ctx) error {
	return writeErrorEnvelope(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func writeErrorEnvelope(c *fiber.Ctx, status int, code, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(status).JSON(fiber.Map{
		"request_id": rid,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
