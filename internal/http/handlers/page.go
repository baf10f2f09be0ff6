package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"animator/internal/animate"
	"animator/internal/domain"
	"animator/internal/i18n"
	"animator/internal/middleware"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

// refreshSeconds is how often a page showing the loader reloads itself.
const refreshSeconds = 5

type pageLabels struct {
	Title         string
	Subtitle      string
	ChooseImage   string
	UploadImage   string
	Generate      string
	Reset         string
	PreviewAlt    string
	VideoFallback string
}

type pageData struct {
	Lang       string
	Labels     pageLabels
	SessionID  string
	View       domain.View
	SetupError string
	// PreviewSrc is a data URI built from the session's own upload.
	PreviewSrc template.URL
	VideoURL   string
	Refresh    int
}

func labels() pageLabels {
	return pageLabels{
		Title:         i18n.T(i18n.KeyPageTitle),
		Subtitle:      i18n.T(i18n.KeyPageSubtitle),
		ChooseImage:   i18n.T(i18n.KeyChooseImage),
		UploadImage:   i18n.T(i18n.KeyUploadImage),
		Generate:      i18n.T(i18n.KeyGenerate),
		Reset:         i18n.T(i18n.KeyReset),
		PreviewAlt:    i18n.T(i18n.KeyPreviewAlt),
		VideoFallback: i18n.T(i18n.KeyVideoFallback),
	}
}

// setupPage renders only the setup error; no other region is shown.
func setupPage() pageData {
	return pageData{
		Labels:     labels(),
		View:       domain.View{SetupError: true},
		SetupError: i18n.T(i18n.KeySetupError),
	}
}

func sessionPage(ctrl *animate.Controller) pageData {
	view := ctrl.View()
	data := pageData{
		Labels:     labels(),
		SessionID:  ctrl.ID(),
		View:       view,
		PreviewSrc: template.URL(view.PreviewURI),
	}
	if view.VideoVisible {
		data.VideoURL = videoURL(ctrl.ID(), view.VideoRef)
	}
	if view.LoaderVisible {
		data.Refresh = refreshSeconds
	}
	return data
}

func (a *App) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Lang = middleware.LocaleFromContext(r.Context())
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		a.Logger.Error().Err(err).Msg("http: render page failed")
		http.Error(w, i18n.T(i18n.KeyUnexpected), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
