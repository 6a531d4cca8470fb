package logging

import (
	"log/slog"

	"github.com/samber/oops"
)

// Err renders err as a structured "error" attribute.
// Errors built with oops additionally contribute their code and context.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return slog.String("error", err.Error())
	}

	attrs := []any{"message", oopsErr.Error()}

	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}

	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}

	return slog.Group("error", attrs...)
}
