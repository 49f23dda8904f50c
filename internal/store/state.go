// Package store holds the normalized transit line state and exposes it to
// the rest of the application through dispatched actions and selectors.
// State values are never mutated in place: every reduction produces a new
// State, so a State handed to a selector can be read without locking.
package store

import (
	"slices"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// LineEntity is the normalized form of a domain.Line.
// Stops are referenced by id; their data lives in State.Stops.
type LineEntity struct {
	ID      string
	Name    string
	Color   string
	StopIDs []string
}

// StopEntity is a stop plus the ids of every line that serves it,
// kept sorted.
type StopEntity struct {
	domain.Stop
	LineIDs []string
}

// State is an immutable snapshot of the store.
type State struct {
	Lines map[string]LineEntity
	Stops map[string]StopEntity
}

func emptyState() State {
	return State{
		Lines: map[string]LineEntity{},
		Stops: map[string]StopEntity{},
	}
}

// clone returns a shallow copy with fresh maps. Entity slices are shared;
// reducers replace them rather than appending in place.
func (s State) clone() State {
	out := State{
		Lines: make(map[string]LineEntity, len(s.Lines)),
		Stops: make(map[string]StopEntity, len(s.Stops)),
	}
	for k, v := range s.Lines {
		out.Lines[k] = v
	}
	for k, v := range s.Stops {
		out.Stops[k] = v
	}
	return out
}

// LineIDs returns every line id in ascending order.
func (s State) LineIDs() []string {
	ids := make([]string, 0, len(s.Lines))
	for id := range s.Lines {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// StopIDs returns every stop id in ascending order.
func (s State) StopIDs() []string {
	ids := make([]string, 0, len(s.Stops))
	for id := range s.Stops {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Line denormalizes the line with the given id back into a domain.Line.
func (s State) Line(id string) (domain.Line, bool) {
	ent, ok := s.Lines[id]
	if !ok {
		return domain.Line{}, false
	}
	line := domain.Line{
		ID:    ent.ID,
		Name:  ent.Name,
		Color: ent.Color,
		Stops: make([]domain.Stop, 0, len(ent.StopIDs)),
	}
	for _, sid := range ent.StopIDs {
		if st, ok := s.Stops[sid]; ok {
			line.Stops = append(line.Stops, st.Stop)
		}
	}
	return line, true
}
