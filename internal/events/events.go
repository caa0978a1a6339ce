// Package events carries named, fire-and-forget notifications between the
// surfaces of the companion (HTTP clients, the session controller, the CLI).
//
// Delivery is best effort. Publish never blocks: a subscriber whose buffer is
// full misses the event. There are no acknowledgments and no ordering
// guarantee across publishers, so handlers must be idempotent.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Name string

const (
	ThemeChanged         Name = "theme-changed"
	LanguageChanged      Name = "language-changed"
	SettingsChanged      Name = "settings-changed"
	DictionaryPopupOpen  Name = "dictionary-popup-open"
	DictionaryPopupClose Name = "dictionary-popup-close"
)

// Names lists every known event name.
func Names() []Name {
	return []Name{ThemeChanged, LanguageChanged, SettingsChanged, DictionaryPopupOpen, DictionaryPopupClose}
}

// Parse validates an event name received from outside.
func Parse(s string) (Name, error) {
	for _, n := range Names() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown event %q", s)
}

type Event struct {
	ID      string          `json:"id"`
	Name    Name            `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// New returns an event with a fresh ID. A nil payload is allowed.
func New(name Name, payload any) (Event, error) {
	ev := Event{ID: uuid.NewString(), Name: name, At: time.Now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode %s payload: %w", name, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// NewRaw returns an event carrying an already encoded payload.
func NewRaw(name Name, payload json.RawMessage) Event {
	return Event{ID: uuid.NewString(), Name: name, Payload: payload, At: time.Now()}
}

// Subscription receives events until its context ends or the bus closes.
type Subscription struct {
	ch     chan Event
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// C returns the receive channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

func (s *Subscription) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// Bus fans events out to every live subscription. Safe for concurrent use.
type Bus struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
	dropped    atomic.Uint64
}

func NewBus(bufferSize int) *Bus {
	return &Bus{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe registers a subscription that ends with ctx. On a closed bus the
// returned subscription is already closed.
func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		ch:   make(chan Event, b.bufferSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.close()
		return sub
	}
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(sub)
		case <-sub.done:
		}
	}()

	return sub
}

// Publish delivers ev to every subscription that has room for it and
// returns how many received it.
func (b *Bus) Publish(ctx context.Context, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	delivered := 0
	for sub := range b.subs {
		if sub.send(ev) {
			delivered++
		} else {
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Emit builds an event and publishes it.
func (b *Bus) Emit(ctx context.Context, name Name, payload any) (Event, error) {
	ev, err := New(name, payload)
	if err != nil {
		return Event{}, err
	}
	b.Publish(ctx, ev)
	return ev, nil
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.close()
	}
	clear(b.subs)
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	sub.close()
}
