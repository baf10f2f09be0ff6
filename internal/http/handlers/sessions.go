package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"animator/internal/animate"
	"animator/internal/domain"
	"animator/internal/i18n"
)

type jsonModeKey struct{}

// retryAfterFull is the Retry-After, in seconds, sent while every session is busy.
const retryAfterFull = "10"

// JSONResponses marks a route group as API-only: actions answer with the
// session document instead of redirecting back to the page.
func JSONResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), jsonModeKey{}, true)))
	})
}

func wantsJSON(r *http.Request) bool {
	v, _ := r.Context().Value(jsonModeKey{}).(bool)
	return v
}

type jobResponse struct {
	ID     string           `json:"id"`
	Handle string           `json:"handle,omitempty"`
	Status domain.JobStatus `json:"status"`
	Polls  int              `json:"polls"`
}

type sessionResponse struct {
	ID    string       `json:"id"`
	View  domain.View  `json:"view"`
	Job   *jobResponse `json:"job,omitempty"`
	Video string       `json:"video_url,omitempty"`
}

func sessionDocument(ctrl *animate.Controller) sessionResponse {
	resp := sessionResponse{ID: ctrl.ID(), View: ctrl.View()}
	if job := ctrl.Job(); job != nil {
		resp.Job = &jobResponse{ID: job.ID, Handle: job.Handle, Status: job.Status, Polls: job.Polls}
	}
	if resp.View.VideoVisible {
		resp.Video = videoURL(ctrl.ID(), resp.View.VideoRef)
	}
	return resp
}

func sessionPath(id string) string {
	return "/s/" + id
}

func videoURL(id, ref string) string {
	return sessionPath(id) + "/video?v=" + ref
}

// session resolves the {id} route parameter. It writes the response itself
// when the session cannot be used.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*animate.Controller, bool) {
	if a.Sessions == nil {
		a.missingCredential(w, r)
		return nil, false
	}
	ctrl, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		if wantsJSON(r) {
			a.error(w, r, http.StatusNotFound, "not_found", "session not found")
			return nil, false
		}
		// an expired page behaves like a reload: start over
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return ctrl, true
}

func (a *App) missingCredential(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		a.error(w, r, http.StatusServiceUnavailable, "missing_credential", i18n.T(i18n.KeySetupError))
		return
	}
	a.renderPage(w, r, http.StatusServiceUnavailable, setupPage())
}

// Index starts a new session, the equivalent of a page load.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	if a.Sessions == nil {
		a.missingCredential(w, r)
		return
	}
	ctrl, err := a.Sessions.Create()
	if err != nil {
		if errors.Is(err, animate.ErrRegistryFull) {
			w.Header().Set("Retry-After", retryAfterFull)
			http.Error(w, i18n.T(i18n.KeyInProgress), http.StatusServiceUnavailable)
			return
		}
		a.Logger.Error().Err(err).Msg("http: create session failed")
		http.Error(w, i18n.T(i18n.KeyUnexpected), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sessionPath(ctrl.ID()), http.StatusSeeOther)
}

// CreateSession is the API counterpart of Index.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	if a.Sessions == nil {
		a.missingCredential(w, r)
		return
	}
	ctrl, err := a.Sessions.Create()
	if err != nil {
		if errors.Is(err, animate.ErrRegistryFull) {
			w.Header().Set("Retry-After", retryAfterFull)
			a.error(w, r, http.StatusServiceUnavailable, "busy", "all sessions are generating, retry later")
			return
		}
		a.Logger.Error().Err(err).Msg("http: create session failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+ctrl.ID())
	a.json(w, r, http.StatusCreated, sessionDocument(ctrl))
}

func (a *App) ShowSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}
	if wantsJSON(r) {
		a.json(w, r, http.StatusOK, sessionDocument(ctrl))
		return
	}
	a.renderPage(w, r, http.StatusOK, sessionPage(ctrl))
}

func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.afterAction(w, r, ctrl, ctrl.IngestImage(r.Context(), animate.ImageFile{
				ContentType: "image/*",
				Reader:      errReader{err},
			}), http.StatusOK)
			return
		}
		a.Logger.Warn().Err(err).Str("session_id", ctrl.ID()).Msg("http: malformed upload")
		if wantsJSON(r) {
			a.error(w, r, http.StatusBadRequest, "bad_request", "multipart form with an image field required")
			return
		}
		http.Redirect(w, r, sessionPath(ctrl.ID()), http.StatusSeeOther)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		// nothing selected: nothing to do
		if wantsJSON(r) {
			a.error(w, r, http.StatusBadRequest, "bad_request", "image file required")
			return
		}
		http.Redirect(w, r, sessionPath(ctrl.ID()), http.StatusSeeOther)
		return
	}
	defer file.Close()

	err = ctrl.IngestImage(r.Context(), animate.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	})
	a.afterAction(w, r, ctrl, err, http.StatusOK)
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}
	err := ctrl.StartGenerate(a.BaseCtx)
	a.afterAction(w, r, ctrl, err, http.StatusAccepted)
}

func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}
	ctrl.Reset()
	a.afterAction(w, r, ctrl, nil, http.StatusOK)
}

// DeleteSession drops a session from the registry, cancelling any job.
func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}
	a.Sessions.Remove(ctrl.ID())
	w.WriteHeader(http.StatusNoContent)
}

// Video streams the session's result; Range requests are honoured so the
// browser player can seek.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.session(w, r)
	if !ok {
		return
	}
	vid := ctrl.Video()
	if vid == nil {
		a.error(w, r, http.StatusNotFound, "not_found", "no video for this session")
		return
	}
	w.Header().Set("Content-Type", vid.MIMEType)
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, "animation.mp4", vid.CreatedAt, bytes.NewReader(vid.Data))
}

func (a *App) afterAction(w http.ResponseWriter, r *http.Request, ctrl *animate.Controller, err error, okStatus int) {
	if !wantsJSON(r) {
		http.Redirect(w, r, sessionPath(ctrl.ID()), http.StatusSeeOther)
		return
	}
	status := okStatus
	switch {
	case err == nil, errors.Is(err, animate.ErrSessionReset):
	case errors.Is(err, domain.ErrInvalidFileType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrFileRead):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoImageSelected):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationInProgress), errors.Is(err, domain.ErrIllegalTransition):
		status = http.StatusConflict
	default:
		a.Logger.Error().Err(err).Str("session_id", ctrl.ID()).Msg("http: session action failed")
		status = http.StatusInternalServerError
	}
	a.json(w, r, status, sessionDocument(ctrl))
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
