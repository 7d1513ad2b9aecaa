// Package events delivers marketplace state-change notifications to
// in-process subscribers. Delivery is synchronous, fire-and-forget, and
// ordered per operation.
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventType labels what happened.
type EventType string

const (
	EventItemOnSale        EventType = "item_on_sale"
	EventItemBought        EventType = "item_bought"
	EventSaleCancelled     EventType = "sale_cancelled"
	EventReputationUpdated EventType = "reputation_updated"
	EventReviewReceived    EventType = "review_received"
)

// Event carries a typed payload emitted after a state change.
type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data"`
}

// Handler is a callback invoked for matching events.
type Handler func(Event)

// Emitter is a simple pub/sub broker. Subscribe before Emit.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewEmitter creates an Emitter with no subscribers. Handler panics are
// dropped silently until a logger is attached with SetLogger.
func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[EventType][]Handler),
		log:      zerolog.Nop(),
	}
}

// SetLogger attaches the logger used to report recovered handler panics.
func (e *Emitter) SetLogger(log zerolog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = log
}

// Subscribe registers h to be called whenever typ is emitted.
func (e *Emitter) Subscribe(typ EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[typ] = append(e.handlers[typ], h)
}

// Emit delivers ev to all subscribers for ev.Type synchronously.
// Each handler is guarded by panic recovery so a misbehaving subscriber
// cannot fail the operation that emitted the event.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := e.handlers[ev.Type]
	log := e.log
	e.mu.RUnlock()
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("event", string(ev.Type)).Interface("panic", r).Msg("event handler panicked")
				}
			}()
			h(ev)
		}()
	}
}
