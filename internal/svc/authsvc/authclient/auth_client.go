package authclient

import (
	"context"

	"github.com/mkrupp/bookstore/internal/domain"
)

// AuthClient is a client of the bookstore auth API. The session travels in
// a cookie, so implementations keep a cookie jar between calls.
type AuthClient interface {
	// Signup registers a user and returns its ID.
	Signup(ctx context.Context, name, email, password string) (int64, error)
	// Login authenticates and stores the session cookie.
	Login(ctx context.Context, email, password string) (domain.UserResponse, error)
	// CurrentUser returns the user of the stored session.
	CurrentUser(ctx context.Context) (domain.UserResponse, error)
	// Logout ends the session and drops the cookie.
	Logout(ctx context.Context) error
}
