package mapengine

import "context"

// Event kinds published to watchers.
const (
	EventSource = "source"
	EventLayer  = "layer"
)

// watchBuffer is the per-watcher backlog before events are dropped.
const watchBuffer = 32

// Event describes one registry change. Data is the new FeatureCollection
// for source events and the domain.Layer for layer events.
type Event struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Watch streams registry changes until ctx ends, at which point the
// channel is closed. A watcher that falls behind loses events; it can
// resynchronize from Style.
func (m *Map) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, watchBuffer)

	m.mu.Lock()
	id := m.nextW
	m.nextW++
	m.watchers[id] = ch
	m.mu.Unlock()

	context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
		close(ch)
	})
	return ch
}

// publish fans ev out to watchers. Callers hold m.mu for writing.
func (m *Map) publish(ev Event) {
	for id, ch := range m.watchers {
		select {
		case ch <- ev:
		default:
			m.log.Warn("map watcher lagging, event dropped", "watcher", id, "kind", ev.Kind, "id", ev.ID)
		}
	}
}
