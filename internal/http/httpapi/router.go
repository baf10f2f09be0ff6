package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"animator/internal/http/handlers"
	"animator/internal/middleware"
)

// Options holds the router-level knobs taken from config.
type Options struct {
	CORSOrigins     []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base middleware
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.Locale,
		middleware.CORS(opts.CORSOrigins),
	)

	limit := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", handlers.Metrics())

	// Browser flow: every action redirects back to the session page.
	r.With(limit).Get("/", app.Index)
	r.Route("/s/{id}", func(r chi.Router) {
		r.Get("/", app.ShowSession)
		r.Get("/video", app.Video)
		r.With(limit).Post("/image", app.UploadImage)
		r.With(limit).Post("/generate", app.Generate)
		r.Post("/reset", app.Reset)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Use(handlers.JSONResponses)
		r.With(limit).Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.ShowSession)
			r.Delete("/", app.DeleteSession)
			r.Get("/video", app.Video)
			r.With(limit).Post("/image", app.UploadImage)
			r.With(limit).Post("/generate", app.Generate)
			r.Post("/reset", app.Reset)
		})
	})

	return r
}
