package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/service"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	University string `json:"university"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool `json:"success"`
	*service.AuthResult
}

// Register creates a new account and returns a token plus the public profile.
func Register(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		}
		if req.Name == "" || req.Email == "" || req.Password == "" || req.University == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "name, email, password, and university are required")
		}

		res, err := authSvc.Register(c.UserContext(), service.RegisterInput{
			Name:       req.Name,
			Email:      req.Email,
			Password:   req.Password,
			University: req.University,
		})
		if err != nil {
			if errors.Is(err, service.ErrDuplicateUser) {
				return writeError(c, fiber.StatusBadRequest, "DUPLICATE_USER", "user already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Status(fiber.StatusCreated).JSON(authResponse{Success: true, AuthResult: res})
	}
}

// Login verifies credentials and returns a token plus the public profile.
// Unknown email and wrong password produce the same response.
func Login(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		}

		res, err := authSvc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_CREDENTIALS", "invalid credentials")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Status(fiber.StatusOK).JSON(authResponse{Success: true, AuthResult: res})
	}
}
