package model

import "time"

// User represents a registered account.
// This is a pure domain model with no database-specific dependencies or tags.
// Password holds the bcrypt hash, never the plaintext, and is excluded from JSON.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	University string    `json:"university"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile is the public projection of a user returned by auth endpoints.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	University string `json:"university"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		University: u.University,
	}
}
