package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

// BridgeListener is the single subscription of this process to the broadcast bridge.
// Payloads are decoded and queued for the fan-out in the order they are received.
type BridgeListener struct {
	log        *slog.Logger
	subscriber contract.Subscriber
	topic      string
	broadcasts chan<- event.DomainEvent
}

// NewBridgeListener subscribes to topic once Run is called.
func NewBridgeListener(log *slog.Logger, subscriber contract.Subscriber, topic string, broadcasts chan<- event.DomainEvent) *BridgeListener {
	return &BridgeListener{log: log, subscriber: subscriber, topic: topic, broadcasts: broadcasts}
}

// Run blocks until ctx is done or the subscription fails; the supervisor restarts it.
func (w *BridgeListener) Run(ctx context.Context) error {
	w.log.Info("Listening to bridge", "topic", w.topic)
	return w.subscriber.Subscribe(ctx, w.topic, func(payload []byte) {
		msg, err := domain.DecodeOutboundMessage(payload)
		if err != nil {
			w.log.Warn("Dropping undecodable bridge payload", "error", err, "size", len(payload))
			return
		}
		select {
		case w.broadcasts <- event.MessageBroadcast{Message: msg, Payload: payload, ReceivedAt: time.Now()}:
		case <-ctx.Done():
		}
	})
}
