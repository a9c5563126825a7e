package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventFanout hands each broadcast to every sink.
//
// Sinks of one event run concurrently, each bounded by sinkTimeout; the next
// event is only taken once they returned or timed out, which keeps the
// receipt order per sink. A failing or slow sink never blocks the others.
type EventFanout struct {
	log         *slog.Logger
	broadcasts  <-chan event.DomainEvent
	telemetry   event.Handler
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

// NewEventFanout drains broadcasts into sinks. A nil telemetry handler discards latency events.
func NewEventFanout(log *slog.Logger, broadcasts <-chan event.DomainEvent, telemetry event.Handler, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	if telemetry == nil {
		telemetry = event.NopHandler{}
	}
	return &EventFanout{
		log:         log,
		broadcasts:  broadcasts,
		telemetry:   telemetry,
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.broadcasts:
			if !ok {
				w.log.Debug("Broadcast channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
			if msg, ok := evt.(event.MessageBroadcast); ok {
				w.telemetry.Handle(event.NewEvent(event.BridgeLatencyType, event.BridgeLatency{
					RoomID:  int64(msg.RoomID()),
					Elapsed: time.Since(msg.Message.CreatedAt),
				}))
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fan-out")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	var wg sync.WaitGroup
	for _, sink := range w.sinks {
		wg.Add(1)
		go func(sink contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Warn("Sink failed", "room_id", evt.RoomID(), "error", err)
			}
		}(sink)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(w.sinkTimeout):
		w.log.Warn("Sink timeout exceeded", "room_id", evt.RoomID(), "timeout", w.sinkTimeout)
	case <-ctx.Done():
	}
}
