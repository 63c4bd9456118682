package repository

import (
	"context"

	"notesapi/internal/model"
)

// UserRepository defines data access for user accounts using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record. The caller provides ID and the hashed
	// password. Returns the stored user (may include values set by the DB).
	// Email uniqueness is enforced by the schema; violations surface as errors.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByEmail returns a user by exact email match.
	// Returns sql.ErrNoRows when no user matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID returns a user by its ID (password hash included; callers
	// project it away before responding).
	FindByID(ctx context.Context, id string) (*model.User, error)
}
