package authsvc

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MaxPasswordBytes is the longest password bcrypt can digest.
const MaxPasswordBytes = 72

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Validate checks the request shape. Password strength is checked separately.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, MaxPasswordBytes)),
		validation.Field(&r.PhoneNumber, validation.RuneLength(0, 32)),
		validation.Field(&r.Address, validation.RuneLength(0, 255)),
	)
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
