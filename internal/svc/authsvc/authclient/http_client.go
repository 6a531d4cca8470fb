package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/mkrupp/bookstore/internal/domain"
	context_ "github.com/mkrupp/bookstore/internal/infra/context"
	"github.com/mkrupp/bookstore/internal/infra/logging"
	http_ "github.com/mkrupp/bookstore/internal/infra/transport/http"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Response   domain.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Response.ErrorCode, e.Response.Message)
}

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	// BaseURL is the API root including the route prefix
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080/api"`
}

// HTTPClient implements AuthClient over HTTP.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    *url.URL
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client with a fresh cookie jar is used. A provided
// client without a jar gets one.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) (*HTTPClient, error) {
	if httpClient == nil {
		httpClient = new(http.Client)
	}

	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("new cookie jar: %w", err)
		}

		httpClient.Jar = jar
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &HTTPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        logging.GetLogger("svc.authsvc.authclient.http_client"),
		cfg:        cfg,
	}, nil
}

// Signup implements AuthClient.Signup.
func (hc *HTTPClient) Signup(ctx context.Context, name, email, password string) (int64, error) {
	var resp domain.SignupResponse

	err := hc.do(ctx, http.MethodPost, "/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return 0, err
	}

	return resp.UserID, nil
}

// Login implements AuthClient.Login.
func (hc *HTTPClient) Login(ctx context.Context, email, password string) (domain.UserResponse, error) {
	var resp domain.LoginResponse

	err := hc.do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return domain.UserResponse{}, err
	}

	return resp.User, nil
}

// CurrentUser implements AuthClient.CurrentUser.
func (hc *HTTPClient) CurrentUser(ctx context.Context) (domain.UserResponse, error) {
	var resp domain.UserResponse

	if err := hc.do(ctx, http.MethodGet, "/user", nil, &resp); err != nil {
		return domain.UserResponse{}, err
	}

	return resp, nil
}

// Logout implements AuthClient.Logout.
func (hc *HTTPClient) Logout(ctx context.Context) error {
	var resp domain.MessageResponse

	return hc.do(ctx, http.MethodPost, "/logout", nil, &resp)
}

// Cookies returns the cookies the client would send to the API.
func (hc *HTTPClient) Cookies() []*http.Cookie {
	return hc.httpClient.Jar.Cookies(hc.baseURL)
}

func (hc *HTTPClient) do(ctx context.Context, method, path string, body, dst any) (err error) {
	log := hc.log.With(logging.Group("http", "method", method, "path", path))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "request failed", logging.Err(err))
		}
	}()

	var reqBody io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, hc.cfg.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(http_.TraceIDHeader, traceID)
	}

	resp, err := hc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode} //nolint:exhaustruct
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Response)

		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
