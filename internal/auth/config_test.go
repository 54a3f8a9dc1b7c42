package auth

import "testing"

func TestLoadConfigDefaultsToDevelopment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABRICKS_HOST", "https://x.cloud.databricks.com/")
	t.Setenv("DATABRICKS_TOKEN", "dapi-token")
	t.Setenv("DATABRICKS_CLIENT_ID", "")
	t.Setenv("DATABRICKS_CLIENT_SECRET", "")

	cfg := LoadConfig()
	if !cfg.Development() {
		t.Fatalf("expected development mode by default, got %s", cfg.Mode)
	}
	if cfg.Host != "https://x.cloud.databricks.com/" {
		t.Fatalf("unexpected host %q", cfg.Host)
	}
	if cfg.Token != "dapi-token" {
		t.Fatalf("unexpected token %q", cfg.Token)
	}
	if cfg.HasClientCredentials() {
		t.Fatal("expected no client credentials")
	}
}

func TestLoadConfigProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABRICKS_CLIENT_ID", "sp-client")
	t.Setenv("DATABRICKS_CLIENT_SECRET", "sp-secret")

	cfg := LoadConfig()
	if cfg.Development() {
		t.Fatal("expected production mode")
	}
	if !cfg.HasClientCredentials() {
		t.Fatal("expected client credentials to be detected")
	}
}

func TestHasClientCredentialsRequiresBoth(t *testing.T) {
	cfg := Config{ClientID: "sp-client"}
	if cfg.HasClientCredentials() {
		t.Fatal("client id alone must not count as credentials")
	}
}
