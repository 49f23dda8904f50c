// Package view bridges store projections to the map engine. A Host owns
// one map instance for its lifetime: it seeds the store, builds the map,
// waits for the style to load, then keeps the two transit sources in sync
// with the store until its context ends.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pkordes/transit-map/backend/internal/domain"
	"github.com/pkordes/transit-map/backend/internal/mapengine"
	"github.com/pkordes/transit-map/backend/internal/store"
)

// Registry ids owned by the host.
const (
	StopsSourceID = "stops-source"
	LinesSourceID = "lines-source"
	StopsLayerID  = "stops-layer"
	LinesLayerID  = "lines-layer"
)

// Initial camera.
var Center = domain.LngLat{Lat: 52.52, Lng: 13.4}

const Zoom = 10

// MarkerPaint is the circle paint shared by stop markers.
var MarkerPaint = domain.Paint{
	"circle-radius":       5,
	"circle-color":        "#ffffff",
	"circle-stroke-color": "#1f3c88",
	"circle-stroke-width": 2,
}

// StyleURL fills the {key} placeholder of template with the URL-escaped key.
func StyleURL(template, key string) string {
	return strings.ReplaceAll(template, "{key}", url.QueryEscape(key))
}

// Engine is the subset of *mapengine.Map the host drives.
type Engine interface {
	SourceRegistry
	Once(event string, fn func())
	Load(ctx context.Context) error
	Loaded() bool
	AddLayer(layer domain.Layer) error
}

// EngineFactory builds the map. It is called once, from Init.
type EngineFactory func(opts mapengine.Options) Engine

// Store is what the host needs from the state store.
type Store interface {
	Dispatch(a store.Action) bool
	Subscribe(ctx context.Context, sel store.Selector[domain.SourcePayload]) *store.Subscription[domain.SourcePayload]
}

// storeAdapter exposes the generic store.Select as a method.
type storeAdapter struct {
	s *store.Store
}

// FromStore adapts s to the Store interface.
func FromStore(s *store.Store) Store {
	return storeAdapter{s: s}
}

func (a storeAdapter) Dispatch(act store.Action) bool { return a.s.Dispatch(act) }

func (a storeAdapter) Subscribe(ctx context.Context, sel store.Selector[domain.SourcePayload]) *store.Subscription[domain.SourcePayload] {
	return store.Select(ctx, a.s, sel)
}

// Host is the view host. Run drives it from a single goroutine; the other
// methods must not be called concurrently with Run.
type Host struct {
	store    Store
	newMap   EngineFactory
	styleURL string
	log      *slog.Logger

	engine Engine
}

// NewHost dispatches AddLine with seed, so the map has a route to draw
// before any user input, and returns a host ready for Init.
func NewHost(st Store, seed domain.Line, newMap EngineFactory, styleURL string, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	st.Dispatch(store.AddLine{Line: seed})
	return &Host{store: st, newMap: newMap, styleURL: styleURL, log: log}
}

// Init constructs the map on first call and returns it.
func (h *Host) Init() Engine {
	if h.engine == nil {
		h.engine = h.newMap(mapengine.Options{Center: Center, Zoom: Zoom, Style: h.styleURL})
	}
	return h.engine
}

// Run loads the map, wires sources and layers once the load event fires,
// and applies store emissions until ctx ends. It returns nil after a
// clean shutdown, ctx.Err() if ctx ends before the map loads, or the
// error that prevented loading or wiring. Run may be called again after
// it returns; a map that already loaded is rewired without reloading.
func (h *Host) Run(ctx context.Context) error {
	engine := h.Init()

	ready := make(chan struct{})
	var loadErr chan error
	if engine.Loaded() {
		close(ready)
	} else {
		engine.Once(mapengine.EventLoad, func() { close(ready) })
		loadErr = make(chan error, 1)
		go func() { loadErr <- engine.Load(ctx) }()
	}

	for waiting := true; waiting; {
		select {
		case <-ready:
			waiting = false
		case err := <-loadErr:
			if err != nil {
				return fmt.Errorf("view.Host.Run: %w", err)
			}
			loadErr = nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	stops := h.store.Subscribe(ctx, store.StopsPointGeoJSON)
	defer stops.Close()
	lines := h.store.Subscribe(ctx, store.StopsLinesGeoJSON)
	defer lines.Close()

	// Both subscriptions hold their current projection already, so the
	// sources exist before the layers that reference them.
	first, ok := <-stops.C()
	if !ok {
		return nil
	}
	firstLines, ok := <-lines.C()
	if !ok {
		return nil
	}
	if err := h.wire(engine, first, firstLines); err != nil {
		return fmt.Errorf("view.Host.Run: %w", err)
	}
	h.log.Info("map wired", "sources", []string{StopsSourceID, LinesSourceID})

	for {
		select {
		case p, ok := <-stops.C():
			if !ok {
				return nil
			}
			h.apply(engine, StopsSourceID, p)
		case p, ok := <-lines.C():
			if !ok {
				return nil
			}
			h.apply(engine, LinesSourceID, p)
		case <-ctx.Done():
			return nil
		}
	}
}

func (h *Host) wire(engine Engine, stops, lines domain.SourcePayload) error {
	if _, err := UpsertSource(engine, StopsSourceID, stops); err != nil {
		return err
	}
	if _, err := UpsertSource(engine, LinesSourceID, lines); err != nil {
		return err
	}
	if err := addLayer(engine, domain.Layer{ID: StopsLayerID, Type: domain.LayerCircle, Source: StopsSourceID, Paint: MarkerPaint}); err != nil {
		return err
	}
	return addLayer(engine, domain.Layer{ID: LinesLayerID, Type: domain.LayerLine, Source: LinesSourceID})
}

// addLayer treats a layer left by an earlier Run as already added.
func addLayer(engine Engine, l domain.Layer) error {
	if err := engine.AddLayer(l); err != nil && !errors.Is(err, mapengine.ErrLayerExists) {
		return err
	}
	return nil
}

// apply upserts one emission. Failures are logged; the stream keeps going.
func (h *Host) apply(engine Engine, id string, p domain.SourcePayload) {
	created, err := UpsertSource(engine, id, p)
	if err != nil {
		h.log.Error("source update failed", "source", id, "error", err)
		return
	}
	n := 0
	if p.Data != nil {
		n = len(p.Data.Features)
	}
	h.log.Debug("source updated", "source", id, "created", created, "features", n)
}

// SourceRegistry is the part of the engine UpsertSource needs.
type SourceRegistry interface {
	GetSource(id string) (mapengine.Source, bool)
	AddSource(id string, payload domain.SourcePayload) error
}

// UpsertSource replaces the data of source id if it exists and adds it
// otherwise, so id never maps to more than one source. It reports whether
// the source was created.
func UpsertSource(reg SourceRegistry, id string, p domain.SourcePayload) (bool, error) {
	if existing, ok := reg.GetSource(id); ok {
		if err := existing.SetData(p.Data); err != nil {
			return false, fmt.Errorf("view.UpsertSource %q: %w", id, err)
		}
		return false, nil
	}
	if err := reg.AddSource(id, p); err != nil {
		return false, fmt.Errorf("view.UpsertSource %q: %w", id, err)
	}
	return true, nil
}
