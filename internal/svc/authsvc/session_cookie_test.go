package authsvc_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/bookstore/internal/svc/authsvc"
)

func newSessionCookie(t *testing.T, secure bool) *authsvc.SessionCookie {
	t.Helper()

	//nolint:exhaustruct
	cookie, err := authsvc.NewSessionCookie(authsvc.CookieConfig{Name: "jwtToken"}, time.Hour, secure)
	require.NoError(t, err)

	return cookie
}

func onlyCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	return cookies[0]
}

func TestSessionCookie_Attach(t *testing.T) {
	t.Parallel()

	for _, secure := range []bool{true, false} {
		rec := httptest.NewRecorder()
		require.NoError(t, newSessionCookie(t, secure).Attach(rec, "header.payload.signature"))

		cookie := onlyCookie(t, rec)

		assert.Equal(t, "jwtToken", cookie.Name)
		assert.Equal(t, "header.payload.signature", cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, secure, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)
		assert.WithinDuration(t, time.Now().Add(time.Hour), cookie.Expires, 5*time.Second)
	}
}

func TestSessionCookie_Read(t *testing.T) {
	t.Parallel()

	cookie := newSessionCookie(t, true)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	_, ok := cookie.Read(req)
	assert.False(t, ok, "absent cookie")

	req.AddCookie(&http.Cookie{Name: "jwtToken", Value: ""}) //nolint:exhaustruct
	_, ok = cookie.Read(req)
	assert.False(t, ok, "empty cookie")

	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})     //nolint:exhaustruct
	req.AddCookie(&http.Cookie{Name: "jwtToken", Value: "tok"}) //nolint:exhaustruct

	token, ok := cookie.Read(req)
	require.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestSessionCookie_Clear(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, newSessionCookie(t, true).Clear(rec))

	cookie := onlyCookie(t, rec)

	assert.Equal(t, "jwtToken", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Negative(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestNewSessionCookie_Lifetimes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     authsvc.CookieConfig
		wantErr error
		wantAge int
	}{
		{name: "defaults to token lifetime", cfg: authsvc.CookieConfig{Name: "jwtToken"}, wantAge: 3600},
		{name: "shorter than token", cfg: authsvc.CookieConfig{Name: "jwtToken", Lifetime: 30 * time.Minute}, wantAge: 1800},
		{
			name:    "longer than token",
			cfg:     authsvc.CookieConfig{Name: "jwtToken", Lifetime: 2 * time.Hour},
			wantErr: authsvc.ErrCookieOutlivesToken,
		},
		{
			name:    "invalid name",
			cfg:     authsvc.CookieConfig{Name: "jwt token;"},
			wantErr: authsvc.ErrInvalidCookie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cookie, err := authsvc.NewSessionCookie(tt.cfg, time.Hour, true)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			rec := httptest.NewRecorder()
			require.NoError(t, cookie.Attach(rec, "tok"))
			assert.Equal(t, tt.wantAge, onlyCookie(t, rec).MaxAge)
		})
	}
}

func TestSessionCookie_AttachRejectsInvalidValue(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := newSessionCookie(t, true).Attach(rec, "bad\"value;")

	require.ErrorIs(t, err, authsvc.ErrInvalidCookie)
	assert.Empty(t, rec.Result().Cookies())
}
