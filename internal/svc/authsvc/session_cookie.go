package authsvc

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrCookieOutlivesToken is returned when the cookie would outlive the token it carries.
	ErrCookieOutlivesToken = errors.New("cookie lifetime exceeds token lifetime")
	// ErrInvalidCookie is returned when a session cookie cannot be written.
	ErrInvalidCookie = errors.New("invalid session cookie")
)

// CookieConfig holds the session cookie settings.
type CookieConfig struct {
	Name string `env:"NAME" default:"jwtToken"`
	// Lifetime of the cookie; zero means the token lifetime
	Lifetime time.Duration `env:"LIFETIME" default:"0s"`
}

// SessionCookie moves session tokens in and out of HTTP cookies.
// The cookie is HttpOnly, SameSite=Strict and scoped to "/". Secure is
// decided once from server configuration, never from the request.
type SessionCookie struct {
	name     string
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

// NewSessionCookie creates a SessionCookie. The cookie may not outlive a
// token of tokenLifetime.
func NewSessionCookie(cfg CookieConfig, tokenLifetime time.Duration, secure bool) (*SessionCookie, error) {
	lifetime := cfg.Lifetime
	if lifetime == 0 {
		lifetime = tokenLifetime
	}

	switch {
	case lifetime < 0:
		return nil, fmt.Errorf("%w: negative lifetime %s", ErrInvalidCookie, lifetime)
	case lifetime > tokenLifetime:
		return nil, fmt.Errorf("%w: %s > %s", ErrCookieOutlivesToken, lifetime, tokenLifetime)
	}

	c := &SessionCookie{
		name:     cfg.Name,
		lifetime: lifetime,
		secure:   secure,
		now:      time.Now,
	}

	if err := c.cookie("probe", lifetime).Valid(); err != nil {
		return nil, errors.Join(ErrInvalidCookie, err)
	}

	return c, nil
}

// Name returns the cookie name.
func (c *SessionCookie) Name() string {
	return c.name
}

// Attach sets the session cookie carrying token on w.
func (c *SessionCookie) Attach(w http.ResponseWriter, token string) error {
	return c.write(w, c.cookie(token, c.lifetime))
}

// Read returns the session token sent with r. Absence is not an error.
func (c *SessionCookie) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

// Clear instructs the client to delete the session cookie.
func (c *SessionCookie) Clear(w http.ResponseWriter) error {
	cookie := c.cookie("", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0).UTC()

	return c.write(w, cookie)
}

func (c *SessionCookie) cookie(value string, lifetime time.Duration) *http.Cookie {
	//nolint:exhaustruct
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		Expires:  c.now().Add(lifetime).UTC(),
		MaxAge:   int(lifetime / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// write validates the cookie first since http.SetCookie silently drops invalid ones.
func (c *SessionCookie) write(w http.ResponseWriter, cookie *http.Cookie) error {
	if err := cookie.Valid(); err != nil {
		return errors.Join(ErrInvalidCookie, err)
	}

	http.SetCookie(w, cookie)

	return nil
}
