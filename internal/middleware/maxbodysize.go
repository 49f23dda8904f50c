package middleware

import (
	"encoding/json"
	"net/http"
)

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests whose Content-Length exceeds the limit are
// rejected with 413 Request Entity Too Large before reaching the next handler;
// bodies of unknown length are wrapped in http.MaxBytesReader so the read
// fails once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				//nolint:errcheck
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "validation_error", "message": "request body too large"},
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
