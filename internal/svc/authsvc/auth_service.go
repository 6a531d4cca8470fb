package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/mkrupp/bookstore/internal/domain"
	"github.com/mkrupp/bookstore/internal/infra/logging"
	"github.com/mkrupp/bookstore/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// Environment is "production", "development" or "test"; only the latter
	// two send the session cookie without the Secure flag
	Environment string `env:"ENVIRONMENT" default:"production"`

	// BcryptCost is the bcrypt work factor
	BcryptCost int `env:"BCRYPT_COST" default:"12"`

	// MinPasswordLength is the minimum number of characters in a new password
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" default:"8"`

	Token  TokenConfig  `envPrefix:"JWT_"`
	Cookie CookieConfig `envPrefix:"COOKIE_"`
}

// SecureCookies reports whether session cookies must carry the Secure flag.
func (c AuthConfig) SecureCookies() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "development", "test":
		return false
	default:
		return true
	}
}

// AuthService implements the signup, login and current-user flows.
// It holds no per-request state and is safe for concurrent use.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Hasher   PasswordHasher
	Tokens   *TokenService
	Metrics  *Metrics
	Log      logging.Logger

	// dummyHash is verified against when the email is unknown so that unknown
	// users and wrong passwords take the same time.
	dummyHash string
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the token settings are incomplete or the user repository cannot be created.
func NewAuthService(
	ctx context.Context,
	repoFactory user.RepositoryFactory,
	cfg AuthConfig,
	metrics *Metrics,
	opts ...TokenServiceOption,
) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	tokens, err := NewTokenService(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("new token service: %w", err)
	}

	hasher := NewBcryptHasher(cfg.BcryptCost)

	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	userRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	log.DebugContext(ctx, "auth service created",
		"environment", cfg.Environment,
		"secure_cookies", cfg.SecureCookies(),
		"bcrypt_cost", hasher.Cost(),
		"token_lifetime", tokens.Lifetime(),
	)

	return &AuthService{
		Config:    cfg,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Tokens:    tokens,
		Metrics:   metrics,
		Log:       log,
		dummyHash: dummyHash,
	}, nil
}

// Signup validates req and registers a new user with a hashed password.
// Returns the stored user, or an error carrying one of the codes
// VAL_001, AUTH_006, AUTH_005 or SRV_001.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (_ *domain.User, err error) {
	email := domain.NormalizeEmail(req.Email)
	log := s.Log.With(logging.Group("user", "email", email))
	errb := oops.In("authsvc").With("operation", OpSignup, "email", email)

	defer func() {
		s.Metrics.Record(OpSignup, err)

		if err != nil {
			log.DebugContext(ctx, "signup failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "user signed up")
		}
	}()

	if err := req.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return nil, errb.Code(domain.CodeValidationFailed).Wrap(errors.Join(domain.ErrValidation, verrs))
		}

		return nil, errb.Code(domain.CodeInternalServerError).Wrapf(err, "validate request")
	}

	if utf8.RuneCountInString(req.Password) < s.Config.MinPasswordLength {
		return nil, errb.Code(domain.CodeWeakPassword).
			With("min_length", s.Config.MinPasswordLength).
			Wrap(domain.ErrWeakPassword)
	}

	_, exists, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errb.Code(domain.CodeInternalServerError).Wrapf(err, "get user")
	} else if exists {
		return nil, errb.Code(domain.CodeUserAlreadyExists).Wrap(domain.ErrUserAlreadyExists)
	}

	passwordHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, errb.Code(domain.CodeInternalServerError).Wrapf(err, "hash password")
	}

	//nolint:exhaustruct
	created, err := s.UserRepo.CreateUser(ctx, &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Address:      strings.TrimSpace(req.Address),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, errb.Code(domain.CodeUserAlreadyExists).Wrap(err)
		}

		return nil, errb.Code(domain.CodeInternalServerError).Wrapf(err, "create user")
	}

	log = log.With(logging.Group("user", "id", created.ID))

	return created, nil
}

// Login authenticates email and password and issues a session token.
// Unknown emails, empty input and wrong passwords all yield the same
// AUTH_002 error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (_ *domain.User, _ string, err error) {
	email := domain.NormalizeEmail(req.Email)
	log := s.Log.With(logging.Group("user", "email", email))
	errb := oops.In("authsvc").With("operation", OpLogin, "email", email)

	defer func() {
		s.Metrics.Record(OpLogin, err)

		if err != nil {
			log.DebugContext(ctx, "login failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "user logged in")
		}
	}()

	if email == "" || req.Password == "" {
		return nil, "", errb.Code(domain.CodeInvalidCredentials).Wrap(domain.ErrInvalidCredentials)
	}

	found, ok, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", errb.Code(domain.CodeInternalServerError).Wrapf(err, "get user")
	}

	if !ok {
		s.Hasher.Verify(req.Password, s.dummyHash)

		return nil, "", errb.Code(domain.CodeInvalidCredentials).Wrap(domain.ErrInvalidCredentials)
	}

	if !s.Hasher.Verify(req.Password, found.PasswordHash) {
		return nil, "", errb.Code(domain.CodeInvalidCredentials).Wrap(domain.ErrInvalidCredentials)
	}

	token, err := s.Tokens.Issue(found.ID)
	if err != nil {
		return nil, "", errb.Code(domain.CodeInternalServerError).Wrapf(err, "issue token")
	}

	log = log.With(logging.Group("user", "id", found.ID))

	return found, token, nil
}

// CurrentUser resolves the user a session token belongs to.
// A missing or invalid token yields AUTH_003, an unknown user AUTH_007.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (_ *domain.User, err error) {
	log := s.Log
	errb := oops.In("authsvc").With("operation", OpCurrentUser)

	defer func() {
		s.Metrics.Record(OpCurrentUser, err)

		if err != nil {
			log.DebugContext(ctx, "get current user failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "current user resolved")
		}
	}()

	if token == "" {
		return nil, errb.Code(domain.CodeTokenExpired).Wrap(domain.ErrNoAuthToken)
	}

	claims, ok := s.Tokens.Validate(ctx, token)
	if !ok {
		return nil, errb.Code(domain.CodeTokenExpired).Wrap(domain.ErrInvalidAuthToken)
	}

	userID, ok := claims.UserID()
	if !ok {
		return nil, errb.Code(domain.CodeTokenExpired).With("subject", claims.Subject).Wrap(domain.ErrInvalidTokenPayload)
	}

	log = log.With(logging.Group("user", "id", userID), logging.Group("token", "jti", claims.TokenID))
	errb = errb.With("user_id", userID)

	found, ok, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errb.Code(domain.CodeInternalServerError).Wrapf(err, "get user")
	} else if !ok {
		return nil, errb.Code(domain.CodeUserNotFound).Wrap(domain.ErrUserNotFound)
	}

	return found, nil
}

// Logout records the end of a session. Tokens are stateless, so a token the
// client keeps stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.Metrics.Record(OpLogout, nil)

	if claims, ok := s.Tokens.Validate(ctx, token); ok {
		s.Log.InfoContext(ctx, "user logged out", logging.Group("token",
			"sub", claims.Subject,
			"jti", claims.TokenID,
		))
	}
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
