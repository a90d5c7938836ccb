package middleware

import (
	"net/http"
	"strings"

	"hotelperf/internal/platform/i18n"
	"hotelperf/internal/requestctx"
)

// Lang picks the response language from ?lang, then Accept-Language, defaulting to Arabic.
func Lang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DefaultLang
		if r.URL.Query().Get("lang") != "" {
			lang = i18n.FromRequest(r)
		} else if strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.Header.Get("Accept-Language"))), i18n.LangEnglish) {
			lang = i18n.LangEnglish
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(requestctx.WithLang(r.Context(), lang)))
	})
}
