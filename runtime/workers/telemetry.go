package workers

import (
	"chat-relay/domain/event"
	"context"
	"log/slog"
)

// TelemetryWorker takes technical events off the hot path: Handle only
// queues, Run hands each event to the handlers.
type TelemetryWorker struct {
	log     *slog.Logger
	events  chan event.Event
	handler event.Handler
}

// NewTelemetryWorker buffers up to bufferSize events for handlers.
func NewTelemetryWorker(log *slog.Logger, bufferSize int, handlers ...event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:     log,
		events:  make(chan event.Event, bufferSize),
		handler: event.Chain(handlers),
	}
}

// Handle never blocks; an event that does not fit in the queue is lost.
func (w *TelemetryWorker) Handle(e event.Event) {
	select {
	case w.events <- e:
	default:
		w.log.Debug("Telemetry event lost", "type", e.Type)
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-w.events:
			w.handler.Handle(e)
		}
	}
}
