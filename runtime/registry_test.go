package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeConnection records what it receives.
type fakeConnection struct {
	id       string
	identity string
	rooms    map[domain.RoomID]bool
	mu       sync.Mutex
	received [][]byte
	err      error
}

func newFakeConnection(id string, rooms ...domain.RoomID) *fakeConnection {
	c := &fakeConnection{id: id, identity: id + "@x.com", rooms: map[domain.RoomID]bool{}}
	for _, r := range rooms {
		c.rooms[r] = true
	}
	return c
}

func (c *fakeConnection) ID() string       { return c.id }
func (c *fakeConnection) Identity() string { return c.identity }
func (c *fakeConnection) IsSubscribed(roomID domain.RoomID) bool {
	return c.rooms[roomID]
}
func (c *fakeConnection) Send(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.received = append(c.received, payload)
	return nil
}
func (c *fakeConnection) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func newTestRegistry() *ConnectionRegistry {
	return NewConnectionRegistry(logs.GetLoggerFromLevel(slog.LevelError), 50*time.Millisecond)
}

func TestConnectionRegistry_BroadcastLocal_ReachesEveryConnection(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	a, b := newFakeConnection("a"), newFakeConnection("b")

	// Given two connections
	registry.Register(a)
	registry.Register(b)
	req.Equal(2, registry.Len())

	// When broadcasting
	delivered := registry.BroadcastLocal(context.Background(), []byte("hello"))

	// Then both received it
	req.Equal(2, delivered)
	req.Equal(1, a.count())
	req.Equal(1, b.count())
}

func TestConnectionRegistry_BroadcastRoom_OnlySubscribed(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	inRoom := newFakeConnection("a", 1)
	elsewhere := newFakeConnection("b", 2)
	registry.Register(inRoom)
	registry.Register(elsewhere)

	delivered := registry.BroadcastRoom(context.Background(), 1, []byte("hello"))

	req.Equal(1, delivered)
	req.Equal(1, inRoom.count())
	req.Zero(elsewhere.count())
}

func TestConnectionRegistry_Unregister_IsIdempotent(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	a := newFakeConnection("a")
	registry.Register(a)

	registry.Unregister(a)
	registry.Unregister(a)

	req.Zero(registry.Len())
	req.Zero(registry.BroadcastLocal(context.Background(), []byte("hello")))
	req.Zero(a.count())
}

func TestConnectionRegistry_Unregister_KeepsReplacement(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	old, replacement := newFakeConnection("a"), newFakeConnection("a")

	// Given a connection re-registered under the same id
	registry.Register(old)
	registry.Register(replacement)

	// When the stale one unregisters
	registry.Unregister(old)

	// Then the replacement still receives
	req.Equal(1, registry.BroadcastLocal(context.Background(), []byte("hello")))
	req.Equal(1, replacement.count())
	req.Zero(old.count())
}

func TestConnectionRegistry_FailingConnectionDoesNotAbortBroadcast(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := newTestRegistry()

	// Given a connection whose buffer is full
	full := mocks.NewMockConnection(ctrl)
	full.EXPECT().ID().Return("full").AnyTimes()
	full.EXPECT().Identity().Return("full@x.com").AnyTimes()
	full.EXPECT().IsSubscribed(domain.RoomID(1)).Return(true)
	full.EXPECT().Send(gomock.Any(), []byte("hello")).Return(errors.ErrSendBufferFull)
	healthy := newFakeConnection("healthy", 1)
	registry.Register(full)
	registry.Register(healthy)

	delivered := registry.BroadcastRoom(context.Background(), 1, []byte("hello"))

	// Then the healthy one still gets the message
	req.Equal(1, delivered)
	req.Equal(1, healthy.count())
}

func TestConnectionRegistry_Consume_MessageBroadcast(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	conn := newFakeConnection("a", 7)
	registry.Register(conn)

	err := registry.Consume(context.Background(), event.MessageBroadcast{
		Message: domain.OutboundMessage{Type: domain.FrameMessage, RoomID: 7},
		Payload: []byte(`{"type":"MESSAGE","roomId":7}`),
	})

	req.NoError(err)
	req.Equal(1, conn.count())
}

func TestConnectionRegistry_ConcurrentRegisterAndBroadcast(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			conn := newFakeConnection(fmt.Sprintf("conn-%d", i), 1)
			registry.Register(conn)
			registry.Unregister(conn)
		}(i)
		go func() {
			defer wg.Done()
			registry.BroadcastRoom(ctx, 1, []byte("hello"))
		}()
	}
	wg.Wait()

	req.Zero(registry.Len())
}
