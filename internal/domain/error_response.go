package domain

import "time"

// Stable machine-readable error codes returned in ErrorResponse.ErrorCode.
const (
	CodeInvalidCredentials  = "AUTH_002"
	CodeTokenExpired        = "AUTH_003"
	CodeUserAlreadyExists   = "AUTH_005"
	CodeWeakPassword        = "AUTH_006"
	CodeUserNotFound        = "AUTH_007"
	CodeValidationFailed    = "VAL_001"
	CodeInvalidFormat       = "VAL_003"
	CodeInternalServerError = "SRV_001"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message          string            `json:"message"`
	Details          string            `json:"details,omitempty"`
	ErrorCode        string            `json:"errorCode"`
	Timestamp        time.Time         `json:"timestamp"`
	TraceID          string            `json:"traceId,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}
