package event

import (
	"log/slog"
	"sync"
)

// CensoredHandler keeps a hit count per censored word.
type CensoredHandler struct {
	mu      sync.Mutex
	log     *slog.Logger
	counter *Counter
	hit     map[string]uint64
}

func NewCensoredHandler(log *slog.Logger, counter *Counter) *CensoredHandler {
	return &CensoredHandler{
		log:     log,
		counter: counter,
		hit:     make(map[string]uint64),
	}
}

func (h *CensoredHandler) Handle(event Event) {
	if event.Type != CensorshipHitType {
		return
	}
	payload, ok := event.Payload.(Censored)
	if !ok {
		logInvalidPayload(h.log, event.Type)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counter.Increment(CensorshipHitType)
	for _, w := range payload.Words {
		h.hit[w]++
	}
	h.log.Debug("message censored", "room_id", payload.RoomID, "sender", payload.Sender, "words", len(payload.Words))
}

func (h *CensoredHandler) Hits(word string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hit[word]
}
