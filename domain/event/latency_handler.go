package event

import (
	"log/slog"
	"time"
)

// LatencyHandler warns when a message spends too long between commit and local fan-out.
type LatencyHandler struct {
	log              *slog.Logger
	counter          *Counter
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, counter *Counter, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, counter: counter, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(e Event) {
	if e.Type != BridgeLatencyType {
		return
	}
	payload, ok := e.Payload.(BridgeLatency)
	if !ok {
		logInvalidPayload(h.log, e.Type)
		return
	}
	h.counter.Increment(BridgeLatencyType)
	if payload.Elapsed > h.latencyThreshold {
		h.log.Warn("high bridge latency detected",
			"room_id", payload.RoomID,
			"lead_time_ms", payload.Elapsed.Milliseconds(),
		)
	}
}
