package authsvc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/bookstore/internal/svc/authsvc"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func testTokenConfig() authsvc.TokenConfig {
	return authsvc.TokenConfig{
		SigningKey: testSigningKey,
		Issuer:     "bookstore-test",
		Audience:   "bookstore-clients",
		Lifetime:   time.Hour,
	}
}

func newTokenService(t *testing.T, cfg authsvc.TokenConfig, opts ...authsvc.TokenServiceOption) *authsvc.TokenService {
	t.Helper()

	svc, err := authsvc.NewTokenService(cfg, opts...)
	require.NoError(t, err)

	return svc
}

func TestNewTokenService_RejectsIncompleteConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *authsvc.TokenConfig)
		wantErr error
	}{
		{"missing key", func(cfg *authsvc.TokenConfig) { cfg.SigningKey = "" }, authsvc.ErrMissingTokenConfig},
		{"missing issuer", func(cfg *authsvc.TokenConfig) { cfg.Issuer = "" }, authsvc.ErrMissingTokenConfig},
		{"missing audience", func(cfg *authsvc.TokenConfig) { cfg.Audience = "" }, authsvc.ErrMissingTokenConfig},
		{"short key", func(cfg *authsvc.TokenConfig) { cfg.SigningKey = "short" }, authsvc.ErrWeakSigningKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testTokenConfig()
			tt.mutate(&cfg)

			svc, err := authsvc.NewTokenService(cfg)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, svc)
		})
	}
}

func TestNewTokenService_DefaultLifetime(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig()
	cfg.Lifetime = 0

	assert.Equal(t, time.Hour, newTokenService(t, cfg).Lifetime())
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTokenService(t, testTokenConfig())

	first, err := svc.Issue(42)
	require.NoError(t, err)

	second, err := svc.Issue(42)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, strings.Split(first, "."), 3)

	for _, token := range []string{first, second} {
		claims, ok := svc.Validate(ctx, token)
		require.True(t, ok)

		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, "bookstore-test", claims.Issuer)
		assert.Equal(t, []string{"bookstore-clients"}, claims.Audience)
		assert.NotEmpty(t, claims.TokenID)
		assert.Equal(t, claims.IssuedAt, claims.NotBefore)
		assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))

		uid, ok := claims.UserID()
		require.True(t, ok)
		assert.Equal(t, int64(42), uid)
	}

	c1, _ := svc.Validate(ctx, first)
	c2, _ := svc.Validate(ctx, second)
	assert.NotEqual(t, c1.TokenID, c2.TokenID)
}

func TestTokenService_ValidateRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()

	issuer := newTokenService(t, testTokenConfig())

	valid, err := issuer.Issue(7)
	require.NoError(t, err)

	forged, err := issuer.Issue(8)
	require.NoError(t, err)

	validParts, forgedParts := strings.Split(valid, "."), strings.Split(forged, ".")
	tampered := validParts[0] + "." + forgedParts[1] + "." + validParts[2]

	otherKey := testTokenConfig()
	otherKey.SigningKey = strings.Repeat("k", 32)

	otherIssuer := testTokenConfig()
	otherIssuer.Issuer = "someone-else"

	otherAudience := testTokenConfig()
	otherAudience.Audience = "someone-else"

	past := newTokenService(t, testTokenConfig(), authsvc.WithClock(func() time.Time { return now.Add(-2 * time.Hour) }))
	expired, err := past.Issue(7)
	require.NoError(t, err)

	future := newTokenService(t, testTokenConfig(), authsvc.WithClock(func() time.Time { return now.Add(time.Hour) }))
	notYetValid, err := future.Issue(7)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    "bookstore-test",
		Audience:  jwt.ClaimStrings{"bookstore-clients"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    "bookstore-test",
		Audience:  jwt.ClaimStrings{"bookstore-clients"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "7",
		Issuer:   "bookstore-test",
		Audience: jwt.ClaimStrings{"bookstore-clients"},
	}).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   authsvc.TokenConfig
		token string
	}{
		{"wrong key", otherKey, valid},
		{"wrong issuer", otherIssuer, valid},
		{"wrong audience", otherAudience, valid},
		{"expired", testTokenConfig(), expired},
		{"not yet valid", testTokenConfig(), notYetValid},
		{"non-HS256 algorithm", testTokenConfig(), hs512},
		{"unsigned", testTokenConfig(), unsigned},
		{"missing expiry", testTokenConfig(), noExpiry},
		{"malformed", testTokenConfig(), "not.a.token"},
		{"empty", testTokenConfig(), ""},
		{"tampered payload", testTokenConfig(), tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, ok := newTokenService(t, tt.cfg).Validate(ctx, tt.token)
			assert.False(t, ok)
			assert.Empty(t, claims.Subject)
		})
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt

	svc := newTokenService(t, testTokenConfig(), authsvc.WithClock(func() time.Time { return clock }))

	token, err := svc.Issue(1)
	require.NoError(t, err)

	clock = issuedAt.Add(time.Hour - time.Second)
	_, ok := svc.Validate(ctx, token)
	assert.True(t, ok)

	clock = issuedAt.Add(time.Hour + time.Second)
	_, ok = svc.Validate(ctx, token)
	assert.False(t, ok)
}
