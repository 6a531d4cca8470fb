package authsvc

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Operation labels for auth metrics.
const (
	OpSignup      = "signup"
	OpLogin       = "login"
	OpCurrentUser = "current_user"
	OpLogout      = "logout"
)

// OutcomeSuccess labels an operation that returned no error.
const OutcomeSuccess = "success"

// Metrics counts auth flow outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Attempts *prometheus.CounterVec
}

// NewMetrics creates the auth collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_auth_attempts_total",
			Help: "Total number of auth operations by outcome (success or error code)",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(m.Attempts)

	return m
}

// Record counts one operation. The outcome is the error code of err, or
// "success" when err is nil.
func (m *Metrics) Record(operation string, err error) {
	if m == nil {
		return
	}

	m.Attempts.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			return fmt.Sprint(code)
		}
	}

	return "unknown"
}
