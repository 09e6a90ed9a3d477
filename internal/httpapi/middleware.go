package httpapi

import (
	"net/http"

	"github.com/Puppetdog/sp-calculator-sub000/internal/calculation"
)

// RequestCache gives every request its own evaluation cache, discarded when
// the request ends.
func RequestCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := calculation.WithRequestCache(r.Context(), calculation.NewRequestCache())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
