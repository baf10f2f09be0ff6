package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"animator/internal/animate"
	"animator/internal/http/handlers"
	httpapi "animator/internal/http/httpapi"
	"animator/internal/infra"
	"animator/internal/providers/genai"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a credential the registry stays nil and every page shows the
	// setup error.
	var sessions *animate.Registry
	if cfg.HasCredential() {
		svc, err := genai.NewVideoService(ctx, cfg, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build video service")
		}
		sessions = animate.NewRegistry(animate.RegistryOptions{
			Factory: func(id string) (*animate.Controller, error) {
				return animate.New(animate.Options{
					ID:            id,
					Service:       svc,
					Model:         cfg.VeoModel,
					PollInterval:  cfg.PollInterval,
					MaxPolls:      cfg.MaxPolls,
					MaxImageBytes: cfg.MaxUploadBytes,
					Logger:        &logger,
				})
			},
			TTL:    cfg.SessionTTL,
			Max:    cfg.SessionMax,
			Logger: &logger,
		})
		go sessions.Run(ctx)
		logger.Info().Str("model", cfg.VeoModel).Bool("sdk", cfg.VeoUseSDK).Msg("video service ready")
	} else {
		logger.Warn().Msg("GEMINI_API_KEY is not set, serving setup error page only")
	}

	app := handlers.NewApp(sessions, logger, cfg.MaxUploadBytes, ctx)
	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
