package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token is malformed, badly signed, expired or not yet valid.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrInvalidTokenPayload is returned when a verified token carries an unusable subject.
	ErrInvalidTokenPayload = fmt.Errorf("%w: invalid payload", ErrInvalidAuthToken)
)

// TokenClaims are the decoded claims of a validated session token.
type TokenClaims struct {
	Subject   string    // User ID as a decimal string
	TokenID   string    // Unique token identifier (jti)
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// UserID parses the subject claim into a user ID.
// Returns false if the subject is not a positive integer.
func (c TokenClaims) UserID() (int64, bool) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// SignupResponse is returned after a successful registration.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse is returned after a successful login. The token itself travels in a cookie.
type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
