// Package mapengine is an in-process map engine: a registry of named
// GeoJSON sources and rendering layers drawn over a remote base style.
// It renders the combined MapLibre style document and publishes every
// registry change so browser clients can mirror it.
package mapengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

// Events accepted by Map.Once.
const (
	EventLoad  = "load"
	EventError = "error"
)

var (
	// ErrNotLoaded is returned by registry operations before the base
	// style has loaded.
	ErrNotLoaded = errors.New("style is not done loading")

	// ErrSourceExists is returned by AddSource for a duplicate id.
	ErrSourceExists = errors.New("source already exists")

	// ErrLayerExists is returned by AddLayer for a duplicate id.
	ErrLayerExists = errors.New("layer already exists")

	// ErrUnknownSource is returned by AddLayer when the layer references
	// a source that has not been added.
	ErrUnknownSource = errors.New("source does not exist")

	// ErrInvalidSource is returned for payloads the engine cannot hold.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidStyle is returned by Load when the base style has a
	// malformed "sources" or "layers" member.
	ErrInvalidStyle = errors.New("invalid base style")
)

// Options configures a Map.
type Options struct {
	Center domain.LngLat
	Zoom   float64
	// Style is the URL of the base style document.
	Style string
}

// Source is a registered data source.
type Source interface {
	ID() string
	// SetData replaces the source's data in place.
	SetData(fc *geojson.FeatureCollection) error
}

// Map holds the engine's registry. Registry methods are safe for
// concurrent use; Once handlers run on the goroutine that calls Load.
type Map struct {
	opts    Options
	fetcher StyleFetcher
	log     *slog.Logger

	mu          sync.RWMutex
	base        Style
	baseSources map[string]json.RawMessage
	baseLayers  []json.RawMessage
	loaded      bool
	loadErr     error
	sources     map[string]*GeoJSONSource
	srcOrder    []string
	layers      []domain.Layer
	handlers    map[string][]func()
	watchers    map[uint64]chan Event
	nextW       uint64
}

// New constructs a Map. No network activity happens until Load.
func New(opts Options, fetcher StyleFetcher, log *slog.Logger) *Map {
	if log == nil {
		log = slog.Default()
	}
	return &Map{
		opts:     opts,
		fetcher:  fetcher,
		log:      log,
		sources:  map[string]*GeoJSONSource{},
		handlers: map[string][]func(){},
		watchers: map[uint64]chan Event{},
	}
}

// Options returns the options the map was built with.
func (m *Map) Options() Options {
	return m.opts
}

// Once registers fn to run the next time event fires. Handlers
// registered after the event has fired are never called.
func (m *Map) Once(event string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], fn)
}

// fire runs and forgets the handlers of event.
func (m *Map) fire(event string) {
	m.mu.Lock()
	fns := m.handlers[event]
	delete(m.handlers, event)
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Load fetches the base style, then fires EventLoad. On failure it fires
// EventError and returns the error. Load succeeds at most once.
func (m *Map) Load(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	style, err := m.fetcher.FetchStyle(ctx, m.opts.Style)
	var (
		sources map[string]json.RawMessage
		layers  []json.RawMessage
	)
	if err == nil {
		sources, layers, err = style.members()
	}
	if err != nil {
		err = fmt.Errorf("mapengine.Map.Load: %w", err)
		m.mu.Lock()
		m.loadErr = err
		m.mu.Unlock()
		m.log.Error("map style failed to load", "error", err)
		m.fire(EventError)
		return err
	}

	m.mu.Lock()
	m.base = style
	m.baseSources = sources
	m.baseLayers = layers
	m.loaded = true
	m.loadErr = nil
	m.publish(Event{Kind: EventLoad})
	m.mu.Unlock()

	m.log.Info("map style loaded", "layers", len(layers), "sources", len(sources))
	m.fire(EventLoad)
	return nil
}

// Loaded reports whether the base style has loaded.
func (m *Map) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Err returns the most recent load error, if any.
func (m *Map) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadErr
}

// GetSource returns the source registered under id.
func (m *Map) GetSource(id string) (Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.sources[id]
	if !ok {
		return nil, false
	}
	return src, true
}

// AddSource registers a new source. It fails with ErrSourceExists if id
// is taken; use GetSource and SetData to update existing sources.
func (m *Map) AddSource(id string, payload domain.SourcePayload) error {
	if payload.Type != domain.SourceTypeGeoJSON {
		return fmt.Errorf("mapengine.Map.AddSource %q: %w: type %q", id, ErrInvalidSource, payload.Type)
	}
	if payload.Data == nil {
		return fmt.Errorf("mapengine.Map.AddSource %q: %w: missing data", id, ErrInvalidSource)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return fmt.Errorf("mapengine.Map.AddSource %q: %w", id, ErrNotLoaded)
	}
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("mapengine.Map.AddSource %q: %w", id, ErrSourceExists)
	}
	m.sources[id] = &GeoJSONSource{id: id, m: m, data: payload.Data}
	m.srcOrder = append(m.srcOrder, id)
	m.publish(Event{Kind: EventSource, ID: id, Data: payload.Data})
	return nil
}

// AddLayer registers a layer over an existing source.
func (m *Map) AddLayer(layer domain.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return fmt.Errorf("mapengine.Map.AddLayer %q: %w", layer.ID, ErrNotLoaded)
	}
	if _, ok := m.sources[layer.Source]; !ok {
		return fmt.Errorf("mapengine.Map.AddLayer %q: %w: %q", layer.ID, ErrUnknownSource, layer.Source)
	}
	for _, l := range m.layers {
		if l.ID == layer.ID {
			return fmt.Errorf("mapengine.Map.AddLayer %q: %w", layer.ID, ErrLayerExists)
		}
	}
	m.layers = append(m.layers, layer)
	m.publish(Event{Kind: EventLayer, ID: layer.ID, Data: layer})
	return nil
}

// SourceIDs returns registered source ids in insertion order.
func (m *Map) SourceIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.srcOrder...)
}

// Layers returns registered layers in insertion order.
func (m *Map) Layers() []domain.Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Layer(nil), m.layers...)
}

// SourceData returns the current data of source id.
func (m *Map) SourceData(id string) (*geojson.FeatureCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.sources[id]
	if !ok {
		return nil, fmt.Errorf("mapengine.Map.SourceData %q: %w", id, domain.ErrNotFound)
	}
	return src.data, nil
}

// GeoJSONSource is the engine's only Source implementation.
type GeoJSONSource struct {
	id   string
	m    *Map
	data *geojson.FeatureCollection
}

// ID returns the source's registry id.
func (s *GeoJSONSource) ID() string { return s.id }

// SetData swaps the source data and notifies watchers.
func (s *GeoJSONSource) SetData(fc *geojson.FeatureCollection) error {
	if fc == nil {
		return fmt.Errorf("mapengine.GeoJSONSource.SetData %q: %w: missing data", s.id, ErrInvalidSource)
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.data = fc
	s.m.publish(Event{Kind: EventSource, ID: s.id, Data: fc})
	return nil
}
