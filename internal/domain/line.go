// Package domain contains the core data types for the transit map.
// It is imported by every other internal package (store, mapengine, view,
// service, handler).
package domain

// Line represents a transit route: an identifier plus an ordered sequence
// of stops. Stop order is travel order and is preserved in the line geometry.
type Line struct {
	ID    string `json:"id" yaml:"id" validate:"omitempty,max=64"`
	Name  string `json:"name" yaml:"name" validate:"required,max=128"`
	Color string `json:"color,omitempty" yaml:"color" validate:"omitempty,hexcolor"`
	Stops []Stop `json:"stops" yaml:"stops" validate:"required,min=1,dive"`
}

// StopIDs returns the ids of the line's stops in travel order.
func (l Line) StopIDs() []string {
	ids := make([]string, len(l.Stops))
	for i, s := range l.Stops {
		ids[i] = s.ID
	}
	return ids
}
