package event

import "log/slog"

// ChannelCapacityHandler warns when a buffered queue is close to full,
// the first sign of a slow sink holding back the fan-out.
type ChannelCapacityHandler struct {
	log                  *slog.Logger
	counter              *Counter
	lowCapacityThreshold int
}

func NewChannelCapacityHandler(log *slog.Logger, counter *Counter, lowCapacityThreshold int) *ChannelCapacityHandler {
	return &ChannelCapacityHandler{log: log, counter: counter, lowCapacityThreshold: lowCapacityThreshold}
}

func (h *ChannelCapacityHandler) Handle(e Event) {
	if e.Type != ChannelCapacityType {
		return
	}
	payload, ok := e.Payload.(ChannelCapacity)
	if !ok {
		logInvalidPayload(h.log, e.Type)
		return
	}
	h.log.Debug("Channel usage", "channel", payload.ChannelName, "length", payload.Length, "capacity", payload.Capacity)
	if payload.Capacity <= 0 {
		return
	}
	if left := payload.Capacity - payload.Length; left <= h.lowCapacityThreshold {
		h.counter.Increment(ChannelCapacityType)
		h.log.Warn("Channel nearly full", "channel", payload.ChannelName, "capacity_left", left)
	}
}
