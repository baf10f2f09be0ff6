package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"animator/internal/animate"
	"animator/internal/infra"
)

// App carries the dependencies shared by every handler.
type App struct {
	// Sessions is nil when the credential is missing; every page then shows
	// the setup error.
	Sessions       *animate.Registry
	Logger         infra.Logger
	MaxUploadBytes int64
	// BaseCtx outlives requests; background generations are bound to it.
	BaseCtx context.Context
}

func NewApp(sessions *animate.Registry, logger infra.Logger, maxUploadBytes int64, baseCtx context.Context) *App {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &App{
		Sessions:       sessions,
		Logger:         logger,
		MaxUploadBytes: maxUploadBytes,
		BaseCtx:        baseCtx,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, r *http.Request, code int, v any) {
	render.Status(r, code)
	render.JSON(w, r, v)
}

func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	a.json(w, r, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}
