package bridge

import (
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Redis carries payloads between processes over Redis PUBLISH/SUBSCRIBE.
// Redis pub/sub is fire and forget: a process that is not subscribed
// when a payload is published never sees it.
type Redis struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedis connects to url, e.g. redis://:password@localhost:6379/0, and pings it.
func NewRedis(ctx context.Context, url string, log *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", errors.ErrBridgeUnavailable, err)
	}
	return &Redis{client: client, log: log}, nil
}

func (r *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	receivers, err := r.client.Publish(ctx, topic, payload).Result()
	if err != nil {
		return fmt.Errorf("%w: redis publish: %v", errors.ErrBridgeUnavailable, err)
	}
	r.log.Debug("Payload published", "topic", topic, "receivers", receivers)
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	pubsub := r.client.Subscribe(ctx, topic)
	defer func() {
		if err := pubsub.Close(); err != nil {
			r.log.Debug("Closing subscription failed", "topic", topic, "error", err)
		}
	}()

	// Wait for the subscription confirmation so that failures surface here
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: redis subscribe: %v", errors.ErrBridgeUnavailable, err)
	}
	r.log.Info("Subscribed to bridge", "topic", topic)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("%w: redis subscription closed", errors.ErrBridgeUnavailable)
			}
			handler([]byte(msg.Payload))
		}
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", errors.ErrBridgeUnavailable, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
