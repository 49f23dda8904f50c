package store

import (
	"context"
	"log/slog"
	"sync"
)

// Store owns the current State. Dispatch and Select are safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[uint64]func(State)
	nextID uint64
	log    *slog.Logger
}

// New returns an empty Store. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		state: emptyState(),
		subs:  map[uint64]func(State){},
		log:   log,
	}
}

// Dispatch reduces a into the current state and reports whether it
// changed. Subscribers are notified, in dispatch order, only on change.
func (s *Store) Dispatch(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := reduce(s.state, a)
	s.log.Debug("action dispatched", "type", a.Type(), "changed", changed)
	if !changed {
		return false
	}
	s.state = next
	for _, notify := range s.subs {
		notify(next)
	}
	return true
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selector derives a read-only projection from State.
type Selector[T any] func(State) T

// Subscription is a live stream of selector results. C holds the
// projection of the state at subscribe time immediately, followed by the
// projection after every change. Delivery keeps only the latest value, so
// a slow reader skips intermediate projections but never sees a stale one.
type Subscription[T any] struct {
	ch     chan T
	mu     sync.Mutex
	closed bool
	cancel func()
	stop   func() bool
}

// C returns the receive side of the subscription. It is closed by Close.
func (sub *Subscription[T]) C() <-chan T {
	return sub.ch
}

// Close stops delivery and closes C. It is safe to call more than once.
func (sub *Subscription[T]) Close() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	close(sub.ch)
	stop := sub.stop
	sub.mu.Unlock()
	if stop != nil {
		stop()
	}
	sub.cancel()
}

// push replaces any undelivered value with v.
func (sub *Subscription[T]) push(v T) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- v
}

// Select subscribes sel to s. The subscription is closed when ctx ends or
// when the caller invokes Close, whichever comes first.
func Select[T any](ctx context.Context, s *Store, sel Selector[T]) *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, 1)}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = func(st State) { sub.push(sel(st)) }
	sub.cancel = func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	sub.push(sel(s.state))
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, sub.Close)
	sub.mu.Lock()
	if !sub.closed {
		sub.stop = stop
	}
	sub.mu.Unlock()
	return sub
}
