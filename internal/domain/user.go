package domain

import "time"

// Role constants for user accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`

	// PasswordHash is the encoded Argon2id hash. Never serialized.
	PasswordHash string `json:"-"`

	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
