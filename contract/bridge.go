//go:generate go run go.uber.org/mock/mockgen -source=bridge.go -destination=../mocks/mock_bridge.go -package=mocks
package contract

import "context"

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber blocks delivering every payload of topic to handler, in receipt order,
// until ctx is cancelled or the channel fails.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
}

// Bridge is the shared broadcast channel connecting every process.
type Bridge interface {
	Publisher
	Subscriber
	Ping(ctx context.Context) error
	Close() error
}
