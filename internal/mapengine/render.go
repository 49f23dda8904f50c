package mapengine

import (
	"encoding/json"
	"fmt"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// styleVersion is the MapLibre style format version emitted when the base
// style does not declare one.
const styleVersion = 8

// members decodes the base style's "sources" object and "layers" array.
// Either may be absent; a present but malformed member is an error.
func (s Style) members() (map[string]json.RawMessage, []json.RawMessage, error) {
	sources := map[string]json.RawMessage{}
	if raw, ok := s["sources"]; ok {
		if err := json.Unmarshal(raw, &sources); err != nil {
			return nil, nil, fmt.Errorf("%w: sources: %w", ErrInvalidStyle, err)
		}
	}
	var layers []json.RawMessage
	if raw, ok := s["layers"]; ok {
		if err := json.Unmarshal(raw, &layers); err != nil {
			return nil, nil, fmt.Errorf("%w: layers: %w", ErrInvalidStyle, err)
		}
	}
	return sources, layers, nil
}

// sourceDoc is how a GeoJSON source appears inside a style document.
type sourceDoc struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Style renders the base style with the engine's center and zoom, its
// sources merged into "sources" and its layers appended to "layers".
// Engine sources replace base sources of the same id.
func (m *Map) Style() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return nil, fmt.Errorf("mapengine.Map.Style: %w", ErrNotLoaded)
	}

	out := make(map[string]any, len(m.base)+4)
	for k, v := range m.base {
		out[k] = v
	}
	if _, ok := m.base["version"]; !ok {
		out["version"] = styleVersion
	}
	out["center"] = [2]float64{m.opts.Center.Lng, m.opts.Center.Lat}
	out["zoom"] = m.opts.Zoom

	sources := make(map[string]any)
	for id, raw := range m.baseSources {
		sources[id] = raw
	}
	for _, id := range m.srcOrder {
		sources[id] = sourceDoc{Type: domain.SourceTypeGeoJSON, Data: m.sources[id].data}
	}
	out["sources"] = sources

	layers := make([]any, 0)
	for _, raw := range m.baseLayers {
		layers = append(layers, raw)
	}
	for _, l := range m.layers {
		layers = append(layers, l)
	}
	out["layers"] = layers

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("mapengine.Map.Style: %w", err)
	}
	return b, nil
}
