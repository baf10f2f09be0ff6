package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string `validate:"required"`
	Port             string `validate:"required,numeric"`
	GeminiAPIKey     string
	GeminiBaseURL    string `validate:"required,url"`
	VeoModel         string `validate:"required"`
	VeoUseSDK        bool
	PollInterval     time.Duration `validate:"gt=0"`
	MaxPolls         int           `validate:"gte=0"`
	DownloadTimeout  time.Duration `validate:"gt=0"`
	SessionTTL       time.Duration `validate:"gt=0"`
	SessionMax       int           `validate:"gt=0"`
	MaxUploadBytes   int64         `validate:"gt=0"`
	StoragePath      string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int `validate:"gte=0"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing GEMINI_API_KEY is not an error here: the UI reports it instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VeoModel:         getEnv("VEO_MODEL", "veo-2.0-generate-001"),
		VeoUseSDK:        getEnvBool("VEO_USE_SDK", false),
		PollInterval:     time.Second * time.Duration(getEnvInt("VEO_POLL_INTERVAL_SECONDS", 10)),
		MaxPolls:         getEnvInt("VEO_MAX_POLLS", 90),
		DownloadTimeout:  time.Second * time.Duration(getEnvInt("VEO_DOWNLOAD_TIMEOUT_SECONDS", 120)),
		SessionTTL:       time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		SessionMax:       getEnvInt("SESSION_MAX", 256),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		StoragePath:      getEnv("STORAGE_PATH", "./output"),
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// HasCredential reports whether the video service credential is configured.
func (c *Config) HasCredential() bool {
	return c != nil && c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
