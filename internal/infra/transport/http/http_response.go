package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkrupp/bookstore/internal/domain"
	context_ "github.com/mkrupp/bookstore/internal/infra/context"
)

// WriteJSON writes body as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes resp as the error body, stamping the current time and
// the request's trace ID.
func WriteError(w http.ResponseWriter, r *http.Request, status int, resp domain.ErrorResponse) error {
	resp.Timestamp = time.Now().UTC()

	if traceID, ok := context_.TraceIDFromContext(r.Context()); ok {
		resp.TraceID = traceID
	}

	return WriteJSON(w, status, resp)
}

// WriteInternalError writes the generic 500 body. No internal detail leaks.
func WriteInternalError(w http.ResponseWriter, r *http.Request) error {
	//nolint:exhaustruct
	return WriteError(w, r, http.StatusInternalServerError, domain.ErrorResponse{
		Message:   "An unexpected error occurred",
		ErrorCode: domain.CodeInternalServerError,
	})
}
