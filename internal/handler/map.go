package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/transit-map/backend/internal/domain"
	"github.com/pkordes/transit-map/backend/internal/mapengine"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 15 * time.Second

// GetStyle handles GET /api/map/style.json.
// The body is a MapLibre style document a browser map can load directly.
func (s *Server) GetStyle(w http.ResponseWriter, r *http.Request) {
	doc, err := s.maps.Style()
	if err != nil {
		if errors.Is(err, mapengine.ErrNotLoaded) {
			writeJSON(w, http.StatusServiceUnavailable, notReadyBody())
			return
		}
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(doc)
}

// GetSource handles GET /api/map/sources/{id}.
func (s *Server) GetSource(w http.ResponseWriter, r *http.Request) {
	fc, err := s.maps.SourceData(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("source not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	b, err := json.Marshal(fc)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

// StreamEvents handles GET /api/map/events as a server-sent event stream.
// The first event is "ready" carrying the stream id; each registry change
// follows as an event named after its kind ("source", "layer", "load").
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The server's write timeout would otherwise cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	streamID := uuid.NewString()
	send := func(event string, payload any) error {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
			return err
		}
		return rc.Flush()
	}

	ctx := r.Context()
	events := s.maps.Watch(ctx)
	if err := send("ready", map[string]string{"stream_id": streamID}); err != nil {
		s.log.WarnContext(ctx, "event stream write failed", "stream_id", streamID, "error", err)
		return
	}
	s.log.InfoContext(ctx, "event stream opened", "stream_id", streamID)
	defer s.log.InfoContext(ctx, "event stream closed", "stream_id", streamID)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := send(ev.Kind, ev); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
