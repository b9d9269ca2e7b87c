package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User models an account holder. Email is stored lowercase and is unique.
// ActivationKey and ForgotPasswordKey are single-use tokens: unique across all
// accounts while set, cleared (empty) once consumed.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Name              string    `json:"name"`
	ActivationKey     string    `json:"-"`
	Active            bool      `json:"active"`
	Role              string    `json:"role"`
	ForgotPasswordKey string    `json:"-"`
	FCMToken          string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PublicUser is the external representation of an account. It never carries
// credential material or outstanding tokens.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the view of the user safe to hand to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// HasPushAddress reports whether the account owns a registered device token.
// At most one push address is kept per account; registering a new one
// overwrites the old.
func (u *User) HasPushAddress() bool {
	return u.FCMToken != ""
}
