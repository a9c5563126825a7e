package bridge

import (
	"bytes"
	"chat-relay/errors"
	"context"
	"fmt"
	"sync"
)

type subscription struct {
	payloads chan []byte
	done     chan struct{}
}

// Memory is an in-process bridge: every subscriber of a topic receives
// every payload published on it, in publication order.
// It serves single-process deployments and tests.
type Memory struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscription]struct{}
	closed      chan struct{}
	closeOnce   sync.Once
	bufferSize  int
}

// NewMemory returns a bridge local to the process, each subscriber buffering bufferSize payloads.
func NewMemory(bufferSize int) *Memory {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Memory{
		subscribers: make(map[string]map[*subscription]struct{}),
		closed:      make(chan struct{}),
		bufferSize:  bufferSize,
	}
}

func (m *Memory) Publish(ctx context.Context, topic string, payload []byte) error {
	if m.isClosed() {
		return fmt.Errorf("%w: memory bridge closed", errors.ErrBridgeUnavailable)
	}
	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscribers[topic]))
	for sub := range m.subscribers[topic] {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.payloads <- bytes.Clone(payload):
		case <-sub.done:
		case <-m.closed:
			return fmt.Errorf("%w: memory bridge closed", errors.ErrBridgeUnavailable)
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", errors.ErrBridgeUnavailable, ctx.Err())
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	sub := &subscription{
		payloads: make(chan []byte, m.bufferSize),
		done:     make(chan struct{}),
	}
	m.mu.Lock()
	if _, ok := m.subscribers[topic]; !ok {
		m.subscribers[topic] = make(map[*subscription]struct{})
	}
	m.subscribers[topic][sub] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.subscribers[topic], sub)
		if len(m.subscribers[topic]) == 0 {
			delete(m.subscribers, topic)
		}
		m.mu.Unlock()
		close(sub.done)
	}()

	for {
		select {
		case payload := <-sub.payloads:
			handler(payload)
		case <-m.closed:
			return fmt.Errorf("%w: memory bridge closed", errors.ErrBridgeUnavailable)
		case <-ctx.Done():
			return nil
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[topic])
}

func (m *Memory) Ping(_ context.Context) error {
	if m.isClosed() {
		return fmt.Errorf("%w: memory bridge closed", errors.ErrBridgeUnavailable)
	}
	return nil
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *Memory) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}
