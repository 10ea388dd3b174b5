package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/MindBalance/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// SupportedLocales lists the locales with server-side strings.
var SupportedLocales = []string{"en", "zh"}

var locales = utils.NewLocales("en", SupportedLocales...)

// LocaleMiddleware extracts locale from query param (lang) or Accept-Language
// and stores it in request context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := locales.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", locale)
		w.Header().Add("Vary", "Accept-Language")
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext retrieves the locale stored by LocaleMiddleware.
func LocaleFromContext(ctx context.Context) string {
	if v := ctx.Value(localeKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return locales.Default()
}
