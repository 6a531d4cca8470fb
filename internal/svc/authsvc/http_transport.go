package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/mkrupp/bookstore/internal/domain"
	"github.com/mkrupp/bookstore/internal/infra/logging"
	http_ "github.com/mkrupp/bookstore/internal/infra/transport/http"
)

// maxBodyBytes caps signup and login payloads.
const maxBodyBytes = 1 << 20

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for signup, login, current user and logout.
type HTTPTransport struct {
	authSvc *AuthService
	cookie  *SessionCookie
	log     logging.Logger
	cfg     HTTPTransportConfig
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// The session token travels in the cookie managed by cookie.
func NewHTTPTransport(
	authSvc *AuthService,
	cookie *SessionCookie,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		cookie:  cookie,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}

	ht.mux = http_.NewServeMux("", ht.Routes())

	return ht
}

// Routes returns the auth endpoints:
// - POST /signup: Register a new user
// - POST /login: Authenticate and receive the session cookie
// - GET /user: Return the user of the session cookie
// - POST /logout: Clear the session cookie.
func (ht *HTTPTransport) Routes() []http_.Route {
	return []http_.Route{
		{Pattern: "POST /signup", Handler: ht.HandleSignup},
		{Pattern: "POST /login", Handler: ht.HandleLogin},
		{Pattern: "GET /user", Handler: ht.HandleCurrentUser},
		{Pattern: "POST /logout", Handler: ht.HandleLogout},
	}
}

// ServeHTTP implements http.Handler, serving Routes without prefix.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleSignup processes user registration requests.
// Expects a JSON SignupRequest body.
func (ht *HTTPTransport) HandleSignup(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignup(w, r)
}

func (ht *HTTPTransport) handleSignup(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer ht.logResult(r.Context(), log, "signup", &err)

	var req SignupRequest
	if err := ht.decode(w, r, &req); err != nil {
		return err
	}

	created, err := ht.authSvc.Signup(r.Context(), req)
	if err != nil {
		return ht.writeError(w, r, err)
	}

	w.Header().Set("Location", http_.PrefixPattern(ht.cfg.RoutePrefix, "/user"))

	return http_.WriteJSON(w, http.StatusCreated, domain.SignupResponse{
		Message: "User created successfully",
		UserID:  created.ID,
	})
}

// HandleLogin processes login requests.
// Expects a JSON LoginRequest body; on success the session cookie is set.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer ht.logResult(r.Context(), log, "login", &err)

	var req LoginRequest
	if err := ht.decode(w, r, &req); err != nil {
		return err
	}

	found, token, err := ht.authSvc.Login(r.Context(), req)
	if err != nil {
		return ht.writeError(w, r, err)
	}

	if err := ht.cookie.Attach(w, token); err != nil {
		_ = http_.WriteInternalError(w, r)

		return fmt.Errorf("attach cookie: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.LoginResponse{
		Message: "Login successful",
		User:    found.Response(),
	})
}

// HandleCurrentUser returns the user identified by the session cookie.
func (ht *HTTPTransport) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCurrentUser(w, r)
}

func (ht *HTTPTransport) handleCurrentUser(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer ht.logResult(r.Context(), log, "get current user", &err)

	token, _ := ht.cookie.Read(r)

	found, err := ht.authSvc.CurrentUser(r.Context(), token)
	if err != nil {
		return ht.writeError(w, r, err)
	}

	return http_.WriteJSON(w, http.StatusOK, found.Response())
}

// HandleLogout clears the session cookie. It succeeds without a cookie too.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer ht.logResult(r.Context(), log, "logout", &err)

	if err := ht.cookie.Clear(w); err != nil {
		_ = http_.WriteInternalError(w, r)

		return fmt.Errorf("clear cookie: %w", err)
	}

	token, _ := ht.cookie.Read(r)
	ht.authSvc.Logout(r.Context(), token)

	return http_.WriteJSON(w, http.StatusOK, domain.MessageResponse{Message: "Logout successful"})
}

func (ht *HTTPTransport) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		//nolint:exhaustruct
		_ = http_.WriteError(w, r, http.StatusBadRequest, domain.ErrorResponse{
			Message:   "Invalid request format",
			ErrorCode: domain.CodeInvalidFormat,
		})

		return errors.Join(domain.ErrInvalidFormat, err)
	}

	return nil
}

// writeError maps a service error onto status, code and message, writes it,
// and returns err for logging.
func (ht *HTTPTransport) writeError(w http.ResponseWriter, r *http.Request, err error) error {
	//nolint:exhaustruct
	resp := domain.ErrorResponse{}

	var (
		status int
		verrs  validation.Errors
	)

	switch {
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		resp.Message = "Validation failed"
		resp.ErrorCode = domain.CodeValidationFailed
		resp.ValidationErrors = make(map[string]string, len(verrs))

		for field, fieldErr := range verrs {
			resp.ValidationErrors[field] = fieldErr.Error()
		}
	case errors.Is(err, domain.ErrWeakPassword):
		status = http.StatusBadRequest
		resp.Message = fmt.Sprintf("Password must be at least %d characters long", ht.authSvc.Config.MinPasswordLength)
		resp.ErrorCode = domain.CodeWeakPassword
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status = http.StatusConflict
		resp.Message = "User with this email already exists"
		resp.ErrorCode = domain.CodeUserAlreadyExists
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		resp.Message = "Invalid email or password"
		resp.ErrorCode = domain.CodeInvalidCredentials
	case errors.Is(err, domain.ErrNoAuthToken):
		status = http.StatusUnauthorized
		resp.Message = "No token provided"
		resp.ErrorCode = domain.CodeTokenExpired
	case errors.Is(err, domain.ErrInvalidTokenPayload):
		status = http.StatusUnauthorized
		resp.Message = "Invalid token payload"
		resp.ErrorCode = domain.CodeTokenExpired
	case errors.Is(err, domain.ErrInvalidAuthToken):
		status = http.StatusUnauthorized
		resp.Message = "Invalid token"
		resp.ErrorCode = domain.CodeTokenExpired
	case errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
		resp.Message = "User not found"
		resp.ErrorCode = domain.CodeUserNotFound
	default:
		_ = http_.WriteInternalError(w, r)

		return err
	}

	_ = http_.WriteError(w, r, status, resp)

	return err
}

func (ht *HTTPTransport) logResult(ctx context.Context, log logging.Logger, op string, errp *error) {
	err := *errp

	switch {
	case err == nil:
		log.DebugContext(ctx, op+" succeeded")
	case isClientError(err):
		log.DebugContext(ctx, op+" rejected", logging.Err(err))
	default:
		log.ErrorContext(ctx, op+" failed", logging.Err(err))
	}
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrInvalidFormat,
		domain.ErrWeakPassword,
		domain.ErrUserAlreadyExists,
		domain.ErrInvalidCredentials,
		domain.ErrInvalidAuthToken,
		domain.ErrNoAuthToken,
		domain.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
