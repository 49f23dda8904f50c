// Package handler implements the HTTP handlers for the transit map API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, line.go, map.go) but share the same
// Server struct so they can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/transit-map/backend/internal/domain"
	"github.com/pkordes/transit-map/backend/internal/mapengine"
	"github.com/pkordes/transit-map/backend/spec"
)

// LineServicer defines the business operations the line handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without a real store.
type LineServicer interface {
	Add(ctx context.Context, line domain.Line) (domain.Line, error)
	List(ctx context.Context) ([]domain.Line, error)
	Get(ctx context.Context, id string) (domain.Line, error)
	Remove(ctx context.Context, id string) error
}

// MapReader is the read side of the map engine. *mapengine.Map satisfies it.
type MapReader interface {
	Style() ([]byte, error)
	SourceData(id string) (*geojson.FeatureCollection, error)
	Watch(ctx context.Context) <-chan mapengine.Event
}

// Server holds the dependencies of every handler.
type Server struct {
	lines LineServicer
	maps  MapReader
	log   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(lines LineServicer, maps MapReader, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{lines: lines, maps: maps, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a router with every endpoint registered. Routes whose
// dependency is nil are left out.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	if s.lines != nil {
		r.Route("/api/lines", func(r chi.Router) {
			r.Get("/", s.ListLines)
			r.Post("/", s.CreateLine)
			r.Get("/{id}", s.GetLine)
			r.Delete("/{id}", s.DeleteLine)
		})
	}
	if s.maps != nil {
		r.Route("/api/map", func(r chi.Router) {
			r.Get("/style.json", s.GetStyle)
			r.Get("/sources/{id}", s.GetSource)
			r.Get("/events", s.StreamEvents)
		})
	}
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
