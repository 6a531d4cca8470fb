package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/bookstore/internal/infra/config"
)

type testConfig struct {
	config.EnvConfig

	StringValue   string        `env:"STRING_VALUE" default:"default"`
	IntValue      int           `env:"INT_VALUE" default:"42"`
	BoolValue     bool          `env:"BOOL_VALUE" default:"true"`
	DurationValue time.Duration `env:"DURATION_VALUE" default:"1h"`
	NoEnvTag      string
	Nested        testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" default:"nested-default"`
}

type requiredConfig struct {
	config.EnvConfig

	Key string `env:"KEY"`
}

func defaults() testConfig {
	return testConfig{
		StringValue:   "default",
		IntValue:      42,
		BoolValue:     true,
		DurationValue: time.Hour,
		Nested:        testNestedConfig{NestedString: "nested-default"},
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		envVars   map[string]string
		want      func(cfg *testConfig)
		wantErr   bool
	}{
		{
			name:      "uses default values when env vars not set",
			namespace: "TEST_DEFAULTS",
			want:      func(*testConfig) {},
		},
		{
			name:      "reads environment variables",
			namespace: "TEST_READS",
			envVars: map[string]string{
				"TEST_READS_STRING_VALUE":   "env-value",
				"TEST_READS_INT_VALUE":      "123",
				"TEST_READS_BOOL_VALUE":     "false",
				"TEST_READS_DURATION_VALUE": "15m",
				"TEST_READS_NESTED_STRING":  "env-nested",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "env-value"
				cfg.IntValue = 123
				cfg.BoolValue = false
				cfg.DurationValue = 15 * time.Minute
				cfg.Nested.NestedString = "env-nested"
			},
		},
		{
			name:      "falls back to shorter namespace",
			namespace: "TEST_FALLBACK_SERVICE",
			envVars: map[string]string{
				"TEST_FALLBACK_STRING_VALUE": "less-specific",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "less-specific"
			},
		},
		{
			name:      "prefers more specific namespace",
			namespace: "TEST_SPECIFIC_SERVICE",
			envVars: map[string]string{
				"TEST_SPECIFIC_STRING_VALUE":         "less-specific",
				"TEST_SPECIFIC_SERVICE_STRING_VALUE": "more-specific",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "more-specific"
			},
		},
		{
			name:      "handles empty string and zero values",
			namespace: "TEST_ZERO",
			envVars: map[string]string{
				"TEST_ZERO_STRING_VALUE":   "",
				"TEST_ZERO_INT_VALUE":      "0",
				"TEST_ZERO_DURATION_VALUE": "0s",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = ""
				cfg.IntValue = 0
				cfg.DurationValue = 0
			},
		},
		{
			name:      "fails on invalid int value",
			namespace: "TEST_BAD_INT",
			envVars:   map[string]string{"TEST_BAD_INT_INT_VALUE": "not-a-number"},
			wantErr:   true,
		},
		{
			name:      "fails on invalid bool value",
			namespace: "TEST_BAD_BOOL",
			envVars:   map[string]string{"TEST_BAD_BOOL_BOOL_VALUE": "not-a-bool"},
			wantErr:   true,
		},
		{
			name:      "fails on invalid duration value",
			namespace: "TEST_BAD_DURATION",
			envVars:   map[string]string{"TEST_BAD_DURATION_DURATION_VALUE": "3600"},
			wantErr:   true,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := config.Parse(ctx, cfg, tt.namespace)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			want := defaults()
			tt.want(&want)

			assert.Equal(t, want.StringValue, cfg.StringValue)
			assert.Equal(t, want.IntValue, cfg.IntValue)
			assert.Equal(t, want.BoolValue, cfg.BoolValue)
			assert.Equal(t, want.DurationValue, cfg.DurationValue)
			assert.Empty(t, cfg.NoEnvTag)
			assert.Equal(t, want.Nested.NestedString, cfg.Nested.NestedString)
			assert.Equal(t, tt.namespace, cfg.Namespace())
		})
	}
}

func TestParseRequiredVar(t *testing.T) {
	cfg := &requiredConfig{}

	err := config.Parse(context.Background(), cfg, "TEST_REQUIRED_UNSET")
	require.ErrorIs(t, err, config.ErrVarNotSet)

	t.Setenv("TEST_REQUIRED_SET_KEY", "secret")

	require.NoError(t, config.Parse(context.Background(), cfg, "TEST_REQUIRED_SET"))
	assert.Equal(t, "secret", cfg.Key)
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  any
	}{
		{name: "non-pointer config", cfg: testConfig{}},
		{name: "non-struct pointer", cfg: new(string)},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := config.Parse(context.Background(), tt.cfg, "")
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
