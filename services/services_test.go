package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/bridge"
	"chat-relay/infrastructure/storage"
	"chat-relay/moderation"
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice@x.com"
	bob   = "bob@x.com"
	carol = "carol@x.com"
)

type testEnv struct {
	store    *storage.BadgerStore
	bridge   *bridge.Memory
	messages *MessageService
	rooms    *RoomService
	members  *MemberService
	censored *event.CensoredHandler
}

// newTestEnv wires the services on a temporary Badger store. A nil publisher
// means the in-memory bridge.
func newTestEnv(t *testing.T, publisher contract.Publisher, index MessageIndex) *testEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store, err := storage.NewBadgerStore(db, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	memory := bridge.NewMemory(16)
	t.Cleanup(func() { _ = memory.Close() })
	if publisher == nil {
		publisher = memory
	}

	moderator, err := moderation.NewModerator([]string{"scumbag"}, '*', log)
	require.NoError(t, err)
	censored := event.NewCensoredHandler(log, event.NewCounter())

	env := &testEnv{
		store:    store,
		bridge:   memory,
		messages: NewMessageService(log, store, publisher, &moderator, index, censored),
		rooms:    NewRoomService(log, store),
		members:  NewMemberService(log, store),
		censored: censored,
	}
	for identity, name := range map[string]string{alice: "Alice", bob: "Bob", carol: "Carol"} {
		require.NoError(t, env.members.EnsureMember(context.Background(), domain.Member{Identity: identity, Name: name}))
	}
	return env
}

// groupRoom creates a group room owned by the first identity and joined by the others.
func (e *testEnv) groupRoom(t *testing.T, name string, identities ...string) domain.RoomID {
	t.Helper()
	ctx := context.Background()
	roomID, err := e.rooms.CreateGroupRoom(ctx, name, identities[0])
	require.NoError(t, err)
	for _, identity := range identities[1:] {
		require.NoError(t, e.rooms.JoinGroupRoom(ctx, roomID, identity))
	}
	return roomID
}
