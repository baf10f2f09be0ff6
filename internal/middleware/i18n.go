package middleware

import (
	"context"
	"net/http"

	"animator/internal/i18n"
)

type localeContextKey struct{}

// Locale pins every response to the interface's single locale. Accept-Language
// is ignored.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := i18n.Tag()
		w.Header().Set("Content-Language", tag)
		ctx := context.WithValue(r.Context(), localeContextKey{}, tag)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext returns the tag pinned by Locale, defaulting to the catalog's.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return i18n.Tag()
}
