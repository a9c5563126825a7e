package websocket

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Options tunes every connection of a node.
type Options struct {
	SendBuffer   int
	WriteWait    time.Duration
	PongWait     time.Duration
	MaxFrameSize int64
	FramesPerSec float64
	FrameBurst   int
}

func DefaultOptions() Options {
	return Options{
		SendBuffer:   256,
		WriteWait:    10 * time.Second,
		PongWait:     60 * time.Second,
		MaxFrameSize: 16 * 1024,
		FramesPerSec: 10,
		FrameBurst:   20,
	}
}

func (o Options) pingPeriod() time.Duration {
	return o.PongWait * 9 / 10
}

// Connection is one client websocket. Writes go through a buffered queue
// drained by a single writer goroutine; a client too slow to drain it is dropped.
type Connection struct {
	id       string
	identity string
	ws       *gorilla.Conn
	opts     Options
	log      *slog.Logger
	limiter  *rate.Limiter

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu    sync.RWMutex
	rooms map[domain.RoomID]struct{}
}

// NewConnection wraps an upgraded socket. The caller starts writePump.
func NewConnection(identity string, ws *gorilla.Conn, opts Options, log *slog.Logger) *Connection {
	id := uuid.NewString()
	return &Connection{
		id:       id,
		identity: identity,
		ws:       ws,
		opts:     opts,
		log:      log.With("connection_id", id, "identity", identity),
		limiter:  rate.NewLimiter(rate.Limit(opts.FramesPerSec), opts.FrameBurst),
		send:     make(chan []byte, opts.SendBuffer),
		closed:   make(chan struct{}),
		rooms:    make(map[domain.RoomID]struct{}),
	}
}

func (c *Connection) ID() string       { return c.id }
func (c *Connection) Identity() string { return c.identity }

// Send queues payload without blocking on the network.
func (c *Connection) Send(ctx context.Context, payload []byte) error {
	select {
	case <-c.closed:
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.closed:
		return errors.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		c.log.Warn("Send buffer full, dropping connection")
		c.Close(gorilla.ClosePolicyViolation, "send buffer full")
		return errors.ErrSendBufferFull
	}
}

func (c *Connection) Subscribe(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *Connection) Unsubscribe(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *Connection) IsSubscribed(roomID domain.RoomID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

// Allow reports whether one more inbound frame fits the rate limit.
func (c *Connection) Allow() bool {
	return c.limiter.Allow()
}

func (c *Connection) Done() <-chan struct{} {
	return c.closed
}

// Close is idempotent.
func (c *Connection) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(c.opts.WriteWait)
		_ = c.ws.WriteControl(gorilla.CloseMessage, gorilla.FormatCloseMessage(code, reason), deadline)
		_ = c.ws.Close()
	})
}

// writePump owns every write on the socket, pings included.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case payload := <-c.send:
			if err := c.write(gorilla.TextMessage, payload); err != nil {
				c.log.Debug("Write failed", "error", err)
				c.Close(gorilla.CloseInternalServerErr, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(gorilla.PingMessage, nil); err != nil {
				c.Close(gorilla.CloseInternalServerErr, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
