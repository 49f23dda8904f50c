package store

import (
	"slices"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// Action is a state change request passed to Store.Dispatch.
type Action interface {
	Type() string
}

// AddLine inserts a line, replacing any line with the same id.
type AddLine struct {
	Line domain.Line
}

func (AddLine) Type() string { return "[Transit Lines] Add Line" }

// RemoveLine deletes a line by id. Stops no longer served by any line
// are dropped with it.
type RemoveLine struct {
	ID string
}

func (RemoveLine) Type() string { return "[Transit Lines] Remove Line" }

// reduce applies a to s. The boolean reports whether the state changed;
// when it is false the returned State is s itself.
func reduce(s State, a Action) (State, bool) {
	switch act := a.(type) {
	case AddLine:
		next := s.clone()
		if _, exists := next.Lines[act.Line.ID]; exists {
			detachLine(next, act.Line.ID)
		}
		attachLine(next, act.Line)
		return next, true
	case RemoveLine:
		if _, exists := s.Lines[act.ID]; !exists {
			return s, false
		}
		next := s.clone()
		detachLine(next, act.ID)
		return next, true
	default:
		return s, false
	}
}

// attachLine writes line and its stops into s. s must be a fresh clone.
func attachLine(s State, line domain.Line) {
	s.Lines[line.ID] = LineEntity{
		ID:      line.ID,
		Name:    line.Name,
		Color:   line.Color,
		StopIDs: line.StopIDs(),
	}
	for _, stop := range line.Stops {
		ent := s.Stops[stop.ID]
		ent.Stop = stop
		if !slices.Contains(ent.LineIDs, line.ID) {
			ids := append(slices.Clone(ent.LineIDs), line.ID)
			slices.Sort(ids)
			ent.LineIDs = ids
		}
		s.Stops[stop.ID] = ent
	}
}

// detachLine removes the line with id from s, pruning orphaned stops.
// s must be a fresh clone.
func detachLine(s State, id string) {
	ent := s.Lines[id]
	delete(s.Lines, id)
	for _, sid := range ent.StopIDs {
		st, ok := s.Stops[sid]
		if !ok {
			continue
		}
		ids := slices.DeleteFunc(slices.Clone(st.LineIDs), func(l string) bool { return l == id })
		if len(ids) == 0 {
			delete(s.Stops, sid)
			continue
		}
		st.LineIDs = ids
		s.Stops[sid] = st
	}
}
