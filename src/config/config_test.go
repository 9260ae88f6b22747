package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvEndpointURL, EnvAuthHeaderName, EnvAuthHeaderValue,
		EnvDirectLineURL, EnvUserID, EnvUserName, EnvLocale,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpointURL, "https://bot.example.com/api")
	t.Setenv(EnvAuthHeaderValue, "Bearer topsecret")
	t.Setenv(EnvLocale, "en-US")

	cfg, err := LoadWithPath("")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/api", cfg.EndpointURL)
	assert.Equal(t, "Authorization", cfg.AuthHeaderName)
	assert.Equal(t, "topsecret", cfg.Secret())
	assert.Equal(t, "en-US", cfg.Locale)
}

func TestSecretWithoutBearerPrefix(t *testing.T) {
	cfg := &Config{AuthHeaderValue: "rawsecret"}
	assert.Equal(t, "rawsecret", cfg.Secret())
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
		field string
	}{
		{
			name: "missing endpoint",
			setup: func(t *testing.T) {
				t.Setenv(EnvAuthHeaderValue, "Bearer x")
			},
			field: "EndpointURL",
		},
		{
			name: "missing auth header value",
			setup: func(t *testing.T) {
				t.Setenv(EnvEndpointURL, "https://bot.example.com")
			},
			field: "AuthHeaderValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.setup(t)

			_, err := LoadWithPath("")
			require.Error(t, err)

			var validationErr ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"endpoint not a url", EnvEndpointURL, "not a url"},
		{"bad header name", EnvAuthHeaderName, "X Auth:Key"},
		{"bad directline url", EnvDirectLineURL, "::::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvEndpointURL, "https://bot.example.com")
			t.Setenv(EnvAuthHeaderValue, "Bearer x")
			t.Setenv(tt.env, tt.value)

			_, err := LoadWithPath("")
			require.Error(t, err)
		})
	}
}

func TestConfigFileMergedUnderEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_url": "https://file.example.com",
		"auth_header_value": "Bearer from-file",
		"user_id": "alice"
	}`), 0644))

	t.Setenv(EnvEndpointURL, "https://env.example.com")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	// Environment wins over the file; file fills the rest.
	assert.Equal(t, "https://env.example.com", cfg.EndpointURL)
	assert.Equal(t, "from-file", cfg.Secret())
	assert.Equal(t, "alice", cfg.UserID)
}

func TestConfigFileMalformed(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadWithPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestHeaderNameValidation(t *testing.T) {
	v := NewValidator()

	valid := &Config{
		EndpointURL:     "https://bot.example.com",
		AuthHeaderName:  "X-Custom-Auth",
		AuthHeaderValue: "v",
	}
	require.NoError(t, v.Validate(valid))

	invalid := &Config{
		EndpointURL:     "https://bot.example.com",
		AuthHeaderName:  "bad header",
		AuthHeaderValue: "v",
	}
	require.Error(t, v.Validate(invalid))
}
