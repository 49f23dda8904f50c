// Package middleware provides reusable HTTP middleware for the transit map API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// Allowed methods cover the line endpoints; map reads and the event stream
// are plain GETs.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "Cache-Control"},
		MaxAge:         600,
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
