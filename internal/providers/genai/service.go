package genai

import (
	"context"
	"net/http"

	"animator/internal/infra"
	"animator/internal/providers/video"
)

// NewVideoService picks the Veo transport from config: the official SDK when
// VEO_USE_SDK is set, the REST client otherwise. Callers check
// cfg.HasCredential first; a blank key is an error here.
func NewVideoService(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (video.Service, error) {
	httpClient := &http.Client{Timeout: cfg.DownloadTimeout}
	if cfg.VeoUseSDK {
		return video.NewSDKClient(ctx, video.SDKOptions{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	}
	return NewClient(Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})
}
