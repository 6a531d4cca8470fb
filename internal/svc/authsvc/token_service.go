package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkrupp/bookstore/internal/domain"
	"github.com/mkrupp/bookstore/internal/infra/logging"
)

// MinSigningKeyLength is the minimum HMAC-SHA-256 key size in bytes.
const MinSigningKeyLength = 32

var (
	// ErrMissingTokenConfig is returned when the signing key, issuer or audience is empty.
	ErrMissingTokenConfig = errors.New("missing token config")
	// ErrWeakSigningKey is returned when the signing key is shorter than MinSigningKeyLength.
	ErrWeakSigningKey = errors.New("signing key too short")
)

// TokenConfig holds the immutable token settings.
type TokenConfig struct {
	// SigningKey is the shared HMAC secret
	SigningKey string `env:"KEY"`
	Issuer     string `env:"ISSUER"`
	Audience   string `env:"AUDIENCE"`
	// Lifetime is how long an issued token stays valid
	Lifetime time.Duration `env:"LIFETIME" default:"1h"`
}

// TokenService issues and validates HS256-signed session tokens.
// Tokens are self-contained; nothing is stored server-side.
type TokenService struct {
	cfg    TokenConfig
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
	log    logging.Logger
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

// WithClock replaces time.Now as the source of issue and validation time.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService. Missing or weak settings are a
// configuration error the caller should treat as fatal.
func NewTokenService(cfg TokenConfig, opts ...TokenServiceOption) (*TokenService, error) {
	switch {
	case cfg.SigningKey == "":
		return nil, fmt.Errorf("%w: signing key", ErrMissingTokenConfig)
	case cfg.Issuer == "":
		return nil, fmt.Errorf("%w: issuer", ErrMissingTokenConfig)
	case cfg.Audience == "":
		return nil, fmt.Errorf("%w: audience", ErrMissingTokenConfig)
	case len(cfg.SigningKey) < MinSigningKeyLength:
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSigningKey, MinSigningKeyLength)
	}

	if cfg.Lifetime <= 0 {
		cfg.Lifetime = time.Hour
	}

	s := &TokenService{
		cfg: cfg,
		key: []byte(cfg.SigningKey),
		now: time.Now,
		log: logging.GetLogger("svc.authsvc.token_service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

// Lifetime returns the validity period of issued tokens.
func (s *TokenService) Lifetime() time.Duration {
	return s.cfg.Lifetime
}

// Issue mints a token for userID. Every call yields a distinct token.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		Issuer:    s.cfg.Issuer,
		Audience:  jwt.ClaimStrings{s.cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Lifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate verifies signature, issuer, audience and lifetime of token.
// Any failure yields false; the reason is logged at debug level only.
func (s *TokenService) Validate(ctx context.Context, token string) (domain.TokenClaims, bool) {
	var claims jwt.RegisteredClaims

	if _, err := s.parser.ParseWithClaims(token, &claims, s.keyFunc); err != nil {
		s.log.DebugContext(ctx, "token rejected", logging.Err(err))

		return domain.TokenClaims{}, false
	}

	return domain.TokenClaims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		Issuer:    claims.Issuer,
		Audience:  claims.Audience,
		IssuedAt:  numericTime(claims.IssuedAt),
		NotBefore: numericTime(claims.NotBefore),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, true
}

func (s *TokenService) keyFunc(*jwt.Token) (any, error) {
	return s.key, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}

	return d.UTC()
}
