package event

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
)

// Event is anything that can be dispatched on a Bus.
type Event interface {
	Name() string
}

// Cancellable events can be vetoed by handlers.
type Cancellable interface {
	Event
	Cancelled() bool
	SetCancelled(bool)
}

// GameScoped events belong to a single game instance.
type GameScoped interface {
	Event
	GameID() uuid.UUID
}

// Cancel is embedded by cancellable events.
type Cancel struct {
	cancelled bool
}

func (c *Cancel) Cancelled() bool     { return c.cancelled }
func (c *Cancel) SetCancelled(v bool) { c.cancelled = v }

// Priority orders handlers. Lower priorities run first, Monitor runs last and
// must not modify the event.
type Priority int

const (
	Lowest Priority = iota
	Low
	Normal
	High
	Highest
	Monitor
)

// Handler receives dispatched events.
type Handler func(Event)

type subscription struct {
	id               uint64
	owner            any
	priority         Priority
	receiveCancelled bool
	handler          Handler
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscription)

// WithPriority sets the handler priority (default Normal).
func WithPriority(p Priority) SubscribeOption {
	return func(s *subscription) {
		s.priority = p
	}
}

// ReceiveCancelled delivers events even after an earlier handler cancelled them.
func ReceiveCancelled() SubscribeOption {
	return func(s *subscription) {
		s.receiveCancelled = true
	}
}

// Bus dispatches events synchronously on the caller's goroutine.
// Owners passed to Subscribe must be comparable, typically a pointer.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	nextID uint64
	logger *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures the logger used for recovered handler panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every event. Use On or OnGame for typed handlers.
func (b *Bus) Subscribe(owner any, handler Handler, opts ...SubscribeOption) {
	sub := &subscription{owner: owner, priority: Normal, handler: handler}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)
	sort.SliceStable(b.subs, func(i, j int) bool {
		return b.subs[i].priority < b.subs[j].priority
	})
}

// Unsubscribe drops every handler registered by owner and returns how many were removed.
func (b *Bus) Unsubscribe(owner any) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.subs[:0]
	removed := 0
	for _, sub := range b.subs {
		if sub.owner == owner {
			removed++
			continue
		}
		kept = append(kept, sub)
	}
	for i := len(kept); i < len(b.subs); i++ {
		b.subs[i] = nil
	}
	b.subs = kept
	return removed
}

// Call dispatches e to all handlers in priority order. It returns false if the
// event is cancellable and ended up cancelled.
func (b *Bus) Call(e Event) bool {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	c, cancellable := e.(Cancellable)
	for _, sub := range subs {
		if cancellable && c.Cancelled() && !sub.receiveCancelled && sub.priority != Monitor {
			continue
		}
		b.invoke(sub, e)
	}
	return !cancellable || !c.Cancelled()
}

func (b *Bus) invoke(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				"event", e.Name(),
				"owner", fmt.Sprintf("%T", sub.owner),
				"panic", r,
			)
		}
	}()
	sub.handler(e)
}

// On registers a handler for events of type T only.
func On[T Event](b *Bus, owner any, fn func(T), opts ...SubscribeOption) {
	b.Subscribe(owner, func(e Event) {
		if typed, ok := e.(T); ok {
			fn(typed)
		}
	}, opts...)
}

// OnGame registers a handler for events of type T that belong to gameID.
func OnGame[T GameScoped](b *Bus, owner any, gameID uuid.UUID, fn func(T), opts ...SubscribeOption) {
	b.Subscribe(owner, func(e Event) {
		if typed, ok := e.(T); ok && typed.GameID() == gameID {
			fn(typed)
		}
	}, opts...)
}
