package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type registered struct {
	conn   contract.Connection
	active atomic.Bool
}

// ConnectionRegistry holds the live connections of this process.
// Broadcasts work on a snapshot taken under the read lock and send outside of it;
// a connection whose unregistration has been observed is never sent to.
type ConnectionRegistry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	connections map[string]*registered
	sendTimeout time.Duration
}

// NewConnectionRegistry returns an empty registry.
// sendTimeout bounds each Send of a broadcast, a connection slower than that
// misses the payload and is left to its own buffer policy.
func NewConnectionRegistry(log *slog.Logger, sendTimeout time.Duration) *ConnectionRegistry {
	return &ConnectionRegistry{
		log:         log,
		connections: make(map[string]*registered),
		sendTimeout: sendTimeout,
	}
}

// Register adds conn; a connection registered again under the same id replaces the previous one.
func (r *ConnectionRegistry) Register(conn contract.Connection) {
	entry := &registered{conn: conn}
	entry.active.Store(true)

	r.mu.Lock()
	defer r.mu.Unlock()
	if previous, ok := r.connections[conn.ID()]; ok {
		previous.active.Store(false)
	}
	r.connections[conn.ID()] = entry
	r.log.Debug("Connection registered", "connection_id", conn.ID(), "identity", conn.Identity(), "total", len(r.connections))
}

// Unregister is idempotent.
func (r *ConnectionRegistry) Unregister(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.connections[conn.ID()]
	if !ok || entry.conn != conn {
		return
	}
	entry.active.Store(false)
	delete(r.connections, conn.ID())
	r.log.Debug("Connection unregistered", "connection_id", conn.ID(), "total", len(r.connections))
}

// Len is the number of live connections, as reported by the heartbeat.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// BroadcastLocal sends payload to every connection of this process.
func (r *ConnectionRegistry) BroadcastLocal(ctx context.Context, payload []byte) int {
	return r.deliver(ctx, r.snapshot(), payload)
}

// BroadcastRoom sends payload to the connections subscribed to roomID.
func (r *ConnectionRegistry) BroadcastRoom(ctx context.Context, roomID domain.RoomID, payload []byte) int {
	entries := r.snapshot()
	subscribed := entries[:0]
	for _, e := range entries {
		if e.conn.IsSubscribed(roomID) {
			subscribed = append(subscribed, e)
		}
	}
	return r.deliver(ctx, subscribed, payload)
}

func (r *ConnectionRegistry) snapshot() []*registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*registered, 0, len(r.connections))
	for _, e := range r.connections {
		entries = append(entries, e)
	}
	return entries
}

// deliver isolates failures: a closed, full or slow connection is skipped.
func (r *ConnectionRegistry) deliver(ctx context.Context, entries []*registered, payload []byte) int {
	delivered := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if !e.active.Load() {
			continue
		}
		if err := r.send(ctx, e.conn, payload); err != nil {
			r.log.Warn("Delivery to connection failed", "connection_id", e.conn.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (r *ConnectionRegistry) send(ctx context.Context, conn contract.Connection, payload []byte) error {
	if r.sendTimeout <= 0 {
		return conn.Send(ctx, payload)
	}
	sendCtx, cancel := context.WithTimeout(ctx, r.sendTimeout)
	defer cancel()
	return conn.Send(sendCtx, payload)
}

// Consume hands bridge traffic to the subscribed connections.
func (r *ConnectionRegistry) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		delivered := r.BroadcastRoom(ctx, evt.RoomID(), evt.Payload)
		r.log.Debug("Message delivered", "room_id", evt.RoomID(), "message_id", evt.Message.MessageID, "connections", delivered)
	default:
		r.log.Debug("Ignored event", "room_id", e.RoomID())
	}
	return nil
}
