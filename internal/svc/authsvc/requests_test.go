package authsvc_test

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/bookstore/internal/svc/authsvc"
)

func TestSignupRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := authsvc.SignupRequest{
		Name:     "John",
		Email:    "john@x.com",
		Password: "password123",
	}

	tests := []struct {
		name       string
		mutate     func(r *authsvc.SignupRequest)
		wantFields []string
	}{
		{name: "valid", mutate: func(*authsvc.SignupRequest) {}},
		{name: "missing name", mutate: func(r *authsvc.SignupRequest) { r.Name = "" }, wantFields: []string{"name"}},
		{name: "bad email", mutate: func(r *authsvc.SignupRequest) { r.Email = "not-an-email" }, wantFields: []string{"email"}},
		{
			name:       "password too long for bcrypt",
			mutate:     func(r *authsvc.SignupRequest) { r.Password = strings.Repeat("p", 73) },
			wantFields: []string{"password"},
		},
		{
			name: "everything missing",
			mutate: func(r *authsvc.SignupRequest) {
				*r = authsvc.SignupRequest{} //nolint:exhaustruct
			},
			wantFields: []string{"email", "name", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tt.mutate(&req)

			err := req.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)

				return
			}

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)

			fields := make([]string, 0, len(verrs))
			for field := range verrs {
				fields = append(fields, field)
			}

			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
