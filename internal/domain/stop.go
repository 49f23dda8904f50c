package domain

// Stop is a named geographic point. A single stop may be served by several
// lines; identity is determined by ID.
type Stop struct {
	ID   string  `json:"id" yaml:"id" validate:"required,max=64"`
	Name string  `json:"name" yaml:"name" validate:"required,max=128"`
	Lat  float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Lng  float64 `json:"lng" yaml:"lng" validate:"longitude"`
}

// LngLat is a coordinate pair in GeoJSON axis order.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}
