package auth

import (
	"os"
	"strings"
)

// Mode selects between local development and deployed (Databricks Apps)
// behaviour for identity and credential resolution.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Config carries everything the resolver needs, read from the environment
// exactly once at startup. Resolution functions never touch os.Getenv.
type Config struct {
	Mode         Mode
	Host         string
	ClientID     string
	ClientSecret string
	Token        string
}

// LoadConfig reads resolver configuration from the environment. ENV defaults
// to development; any value other than "development" is treated as
// production.
func LoadConfig() Config {
	mode := ModeDevelopment
	if env := strings.TrimSpace(os.Getenv("ENV")); env != "" && env != string(ModeDevelopment) {
		mode = ModeProduction
	}
	return Config{
		Mode:         mode,
		Host:         strings.TrimSpace(os.Getenv("DATABRICKS_HOST")),
		ClientID:     strings.TrimSpace(os.Getenv("DATABRICKS_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("DATABRICKS_CLIENT_SECRET")),
		Token:        strings.TrimSpace(os.Getenv("DATABRICKS_TOKEN")),
	}
}

// Development reports whether the resolver runs in local development mode.
func (c Config) Development() bool {
	return c.Mode == ModeDevelopment
}

// HasClientCredentials reports whether service-principal OAuth credentials
// are fully configured.
func (c Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
