package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("VEO_MODEL", "")
	t.Setenv("VEO_POLL_INTERVAL_SECONDS", "")
	t.Setenv("VEO_MAX_POLLS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.VeoModel != "veo-2.0-generate-001" {
		t.Fatalf("VeoModel mismatch: got %q", cfg.VeoModel)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("PollInterval mismatch: got %s", cfg.PollInterval)
	}
	if cfg.MaxPolls != 90 {
		t.Fatalf("MaxPolls mismatch: got %d", cfg.MaxPolls)
	}
	if cfg.HasCredential() {
		t.Fatalf("expected no credential")
	}
}

func TestLoadConfigMissingCredentialIsNotAnError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "   ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("GeminiAPIKey should be trimmed, got %q", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("VEO_USE_SDK", "true")
	t.Setenv("VEO_POLL_INTERVAL_SECONDS", "3")
	t.Setenv("VEO_MAX_POLLS", "0")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.HasCredential() || !cfg.VeoUseSDK {
		t.Fatalf("expected credential and sdk flag, got %+v", cfg)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("PollInterval mismatch: got %s", cfg.PollInterval)
	}
	if cfg.MaxPolls != 0 {
		t.Fatalf("MaxPolls mismatch: got %d", cfg.MaxPolls)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Fatalf("MaxUploadBytes mismatch: got %d", cfg.MaxUploadBytes)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSOrigins) != len(expected) {
		t.Fatalf("CORSOrigins mismatch: got %#v want %#v", cfg.CORSOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSOrigins[i] != origin {
			t.Fatalf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("VEO_POLL_INTERVAL_SECONDS", "-1")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error for negative poll interval")
	}
}

func TestLoadConfigRejectsNonNumericPort(t *testing.T) {
	t.Setenv("VEO_POLL_INTERVAL_SECONDS", "")
	t.Setenv("PORT", "http")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error for port")
	}
}
