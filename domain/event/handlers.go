package event

import (
	"log/slog"
	"sync"
)

// Handler Each kind of event has his own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(event Event)
}

// Chain hands every event to each handler in order.
type Chain []Handler

func (c Chain) Handle(event Event) {
	for _, h := range c {
		h.Handle(event)
	}
}

type Counter struct {
	mu     sync.Mutex
	counts map[Type]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[Type]uint64)}
}

func (c *Counter) Increment(t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[t]++
}

func (c *Counter) Get(t Type) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}

// NopHandler drops events.
type NopHandler struct{}

func (NopHandler) Handle(Event) {}

func logInvalidPayload(log *slog.Logger, t Type) {
	log.Error("invalid event payload", "type", t)
}
