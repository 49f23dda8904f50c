package domain

import "github.com/paulmach/orb/geojson"

// SourceTypeGeoJSON is the only source type the map engine understands.
const SourceTypeGeoJSON = "geojson"

// SourcePayload is a map-consumable geometry collection. It is derived from
// store state and never persisted.
type SourcePayload struct {
	Type string                     `json:"type"`
	Data *geojson.FeatureCollection `json:"data"`
}

// NewGeoJSONSource wraps fc in a geojson SourcePayload.
func NewGeoJSONSource(fc *geojson.FeatureCollection) SourcePayload {
	return SourcePayload{Type: SourceTypeGeoJSON, Data: fc}
}

// LayerType names the rendering primitive of a Layer.
type LayerType string

const (
	LayerCircle LayerType = "circle"
	LayerLine   LayerType = "line"
)

// Paint holds layer paint properties keyed by their MapLibre property names
// (e.g. "circle-radius"). A nil Paint means engine defaults.
type Paint map[string]any

// Layer is a named rendering rule bound to a source.
type Layer struct {
	ID     string    `json:"id"`
	Type   LayerType `json:"type"`
	Source string    `json:"source"`
	Paint  Paint     `json:"paint,omitempty"`
}
