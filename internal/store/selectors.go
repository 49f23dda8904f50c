package store

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// StopsPointGeoJSON projects every stop as a Point feature, ordered by
// stop id. Properties: id, name, lines.
func StopsPointGeoJSON(s State) domain.SourcePayload {
	fc := geojson.NewFeatureCollection()
	for _, id := range s.StopIDs() {
		st := s.Stops[id]
		f := geojson.NewFeature(orb.Point{st.Lng, st.Lat})
		f.ID = st.ID
		f.Properties["id"] = st.ID
		f.Properties["name"] = st.Name
		f.Properties["lines"] = append([]string(nil), st.LineIDs...)
		fc.Append(f)
	}
	return domain.NewGeoJSONSource(fc)
}

// StopsLinesGeoJSON projects every line with at least two resolvable
// stops as a LineString feature in travel order, ordered by line id.
// Properties: id, name, and color when set.
func StopsLinesGeoJSON(s State) domain.SourcePayload {
	fc := geojson.NewFeatureCollection()
	for _, id := range s.LineIDs() {
		ln := s.Lines[id]
		coords := make(orb.LineString, 0, len(ln.StopIDs))
		for _, sid := range ln.StopIDs {
			if st, ok := s.Stops[sid]; ok {
				coords = append(coords, orb.Point{st.Lng, st.Lat})
			}
		}
		if len(coords) < 2 {
			continue
		}
		f := geojson.NewFeature(coords)
		f.ID = ln.ID
		f.Properties["id"] = ln.ID
		f.Properties["name"] = ln.Name
		if ln.Color != "" {
			f.Properties["color"] = ln.Color
		}
		fc.Append(f)
	}
	return domain.NewGeoJSONSource(fc)
}

// AllLines denormalizes every line, ordered by id.
func AllLines(s State) []domain.Line {
	out := make([]domain.Line, 0, len(s.Lines))
	for _, id := range s.LineIDs() {
		if l, ok := s.Line(id); ok {
			out = append(out, l)
		}
	}
	return out
}
