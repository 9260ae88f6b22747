package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Environment variables recognized by Load. The agent endpoint and
// auth header names match what the bot deployment tooling exports.
const (
	EnvEndpointURL     = "AGENT_ENDPOINT_URL"
	EnvAuthHeaderName  = "CUSTOM_AUTH_HEADER_NAME"
	EnvAuthHeaderValue = "CUSTOM_AUTH_HEADER_VALUE"
	EnvDirectLineURL   = "DIRECTLINE_ENDPOINT"
	EnvUserID          = "BOTCHAT_USER_ID"
	EnvUserName        = "BOTCHAT_USER_NAME"
	EnvLocale          = "BOTCHAT_LOCALE"
)

// configFile is looked up under the XDG config home.
const configFile = "botchat/config.json"

// Config holds the bot connection settings. EndpointURL and
// AuthHeaderValue are required; everything else has a default.
type Config struct {
	EndpointURL        string `json:"endpoint_url" validate:"required,url"`
	AuthHeaderName     string `json:"auth_header_name" validate:"omitempty,header_name"`
	AuthHeaderValue    string `json:"auth_header_value" validate:"required"`
	DirectLineEndpoint string `json:"directline_endpoint" validate:"omitempty,url"`
	UserID             string `json:"user_id"`
	UserName           string `json:"user_name"`
	Locale             string `json:"locale"`
}

// DefaultConfig returns the configuration defaults applied before any
// file or environment values.
func DefaultConfig() *Config {
	return &Config{
		AuthHeaderName: "Authorization",
	}
}

// Secret returns the token-exchange secret: the configured auth header
// value with any leading "Bearer " prefix stripped.
func (c *Config) Secret() string {
	return strings.TrimPrefix(c.AuthHeaderValue, "Bearer ")
}

// Load builds the configuration from, in increasing precedence: the
// defaults, the optional config file under the XDG config home, and
// the environment. A .env file in the working directory is loaded
// first so its values are visible as environment variables.
func Load() (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	path, _ := xdg.SearchConfigFile(configFile)
	return LoadWithPath(path)
}

// LoadWithPath is Load with an explicit config file path; path may be
// empty to skip file loading entirely.
func LoadWithPath(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := mergeFile(config, path); err != nil {
			return nil, err
		}
	}

	applyEnvironment(config)

	if err := NewValidator().Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func mergeFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if fileConfig.EndpointURL != "" {
		config.EndpointURL = fileConfig.EndpointURL
	}
	if fileConfig.AuthHeaderName != "" {
		config.AuthHeaderName = fileConfig.AuthHeaderName
	}
	if fileConfig.AuthHeaderValue != "" {
		config.AuthHeaderValue = fileConfig.AuthHeaderValue
	}
	if fileConfig.DirectLineEndpoint != "" {
		config.DirectLineEndpoint = fileConfig.DirectLineEndpoint
	}
	if fileConfig.UserID != "" {
		config.UserID = fileConfig.UserID
	}
	if fileConfig.UserName != "" {
		config.UserName = fileConfig.UserName
	}
	if fileConfig.Locale != "" {
		config.Locale = fileConfig.Locale
	}
	return nil
}

func applyEnvironment(config *Config) {
	overrides := []struct {
		env   string
		field *string
	}{
		{EnvEndpointURL, &config.EndpointURL},
		{EnvAuthHeaderName, &config.AuthHeaderName},
		{EnvAuthHeaderValue, &config.AuthHeaderValue},
		{EnvDirectLineURL, &config.DirectLineEndpoint},
		{EnvUserID, &config.UserID},
		{EnvUserName, &config.UserName},
		{EnvLocale, &config.Locale},
	}
	for _, o := range overrides {
		if value := os.Getenv(o.env); value != "" {
			*o.field = value
		}
	}
}
