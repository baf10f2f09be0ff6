package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.Sessions == nil {
		status = "missing_credential"
	}
	a.json(w, r, http.StatusOK, map[string]string{"status": status})
}
