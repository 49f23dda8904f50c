package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// LineList is the body of GET /api/lines.
type LineList struct {
	Data []domain.Line `json:"data"`
}

// CreateLine handles POST /api/lines.
func (s *Server) CreateLine(w http.ResponseWriter, r *http.Request) {
	var body domain.Line
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body must be a JSON line"))
		return
	}

	created, err := s.lines.Add(r.Context(), body)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListLines handles GET /api/lines.
func (s *Server) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := s.lines.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if lines == nil {
		lines = []domain.Line{}
	}
	writeJSON(w, http.StatusOK, LineList{Data: lines})
}

// GetLine handles GET /api/lines/{id}.
func (s *Server) GetLine(w http.ResponseWriter, r *http.Request) {
	line, err := s.lines.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("line not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// DeleteLine handles DELETE /api/lines/{id}.
func (s *Server) DeleteLine(w http.ResponseWriter, r *http.Request) {
	if err := s.lines.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("line not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, internalBody())
}
