package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an email that is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword is returned when a password does not meet the length policy.
	ErrWeakPassword = errors.New("weak password")
	// ErrValidation is returned when a request payload fails shape validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidFormat is returned when a request payload cannot be decoded.
	ErrInvalidFormat = errors.New("invalid format")
)

// User is the credential record of a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserResponse is the minimal, non-sensitive view of a user returned to clients.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Response returns the public view of the user.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// NormalizeEmail returns the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
