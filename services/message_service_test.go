package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	searchindex "chat-relay/infrastructure/search"
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestScenario_TeamUnreadCounts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)

	// Given alice created "Team" and bob joined it
	team, err := env.rooms.CreateGroupRoom(ctx, "Team", alice)
	req.NoError(err)
	req.NoError(env.rooms.JoinGroupRoom(ctx, team, bob))

	// When alice says hello
	_, err = env.messages.SubmitMessage(ctx, team, alice, "hello")
	req.NoError(err)

	// Then only bob has something to read
	unread, err := env.messages.UnreadCount(ctx, team, bob)
	req.NoError(err)
	req.Equal(1, unread)
	unread, err = env.messages.UnreadCount(ctx, team, alice)
	req.NoError(err)
	req.Equal(0, unread)

	// And acknowledging clears it
	flipped, err := env.messages.AcknowledgeRead(ctx, team, bob)
	req.NoError(err)
	req.Equal(1, flipped)
	unread, err = env.messages.UnreadCount(ctx, team, bob)
	req.NoError(err)
	req.Equal(0, unread)
}

func TestSubmitMessage_OneReadStatusPerParticipantAtSubmission(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Ops", alice, bob)

	// Given a message sent while alice and bob participate
	_, err := env.messages.SubmitMessage(ctx, roomID, bob, "deploy at noon")
	req.NoError(err)

	// When carol joins afterwards
	req.NoError(env.rooms.JoinGroupRoom(ctx, roomID, carol))

	// Then carol has no status for it and only alice has one unread
	expected := map[string]int{alice: 1, bob: 0, carol: 0}
	for identity, want := range expected {
		unread, err := env.messages.UnreadCount(ctx, roomID, identity)
		req.NoError(err)
		req.Equal(want, unread, identity)
	}
}

func TestAcknowledgeRead_IsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Ops", alice, bob)
	for i := range 3 {
		_, err := env.messages.SubmitMessage(ctx, roomID, alice, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	first, err := env.messages.AcknowledgeRead(ctx, roomID, bob)
	req.NoError(err)
	second, err := env.messages.AcknowledgeRead(ctx, roomID, bob)
	req.NoError(err)

	req.Equal(3, first)
	req.Equal(0, second)
	unread, err := env.messages.UnreadCount(ctx, roomID, bob)
	req.NoError(err)
	req.Equal(0, unread)
}

func TestSubmitMessage_Rejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Ops", alice)

	tests := []struct {
		name    string
		roomID  domain.RoomID
		sender  string
		body    string
		wantErr error
	}{
		{"unknown room", 999, alice, "hi", errors.ErrRoomNotFound},
		{"unknown sender", roomID, "ghost@x.com", "hi", errors.ErrIdentityNotFound},
		{"sender outside the room", roomID, bob, "hi", errors.ErrNotAParticipant},
		{"blank body", roomID, alice, "   ", errors.ErrInvalidRequest},
		{"body too long", roomID, alice, string(make([]rune, MaxMessageLength+1)), errors.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := env.messages.SubmitMessage(ctx, tt.roomID, tt.sender, tt.body)
			req.ErrorIs(err, tt.wantErr)
		})
	}

	history, err := env.messages.GetHistory(ctx, roomID, alice)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestSubmitMessage_PublishesCensoredPayloadOnChatTopic(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Zoo", alice, bob)

	received := make(chan []byte, 1)
	go func() {
		_ = env.bridge.Subscribe(ctx, domain.ChatTopic, func(payload []byte) { received <- payload })
	}()
	req.Eventually(func() bool { return env.bridge.Subscribers(domain.ChatTopic) == 1 }, time.Second, 5*time.Millisecond)

	// When alice mentions a censored word
	saved, err := env.messages.SubmitMessage(ctx, roomID, alice, "  that scumbag escaped  ")
	req.NoError(err)

	// Then the stored body is censored
	req.Equal("that ******* escaped", saved.Body)
	req.Equal(uint64(1), env.censored.Hits("scumbag"))

	// And the bridge carries it with the sender display name
	select {
	case raw := <-received:
		out, err := domain.DecodeOutboundMessage(raw)
		req.NoError(err)
		req.Equal(roomID, out.RoomID)
		req.Equal(saved.ID.String(), out.MessageID)
		req.Equal(alice, out.SenderEmail)
		req.Equal("Alice", out.SenderName)
		req.Equal("that ******* escaped", out.Message)
	case <-time.After(time.Second):
		req.Fail("no payload published")
	}
}

func TestSubmitMessage_BridgeFailureKeepsMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	env := newTestEnv(t, publisher, nil)
	roomID := env.groupRoom(t, "Ops", alice, bob)

	// Given a bridge that cannot be reached
	publisher.EXPECT().
		Publish(gomock.Any(), domain.ChatTopic, gomock.Any()).
		Return(fmt.Errorf("dial tcp: connection refused"))

	// When alice sends a message
	saved, err := env.messages.SubmitMessage(ctx, roomID, alice, "still there?")

	// Then the failure is reported but the message is durable
	req.ErrorIs(err, errors.ErrBridgeUnavailable)
	req.NotEqual(domain.Message{}, saved)
	history, err := env.messages.GetHistory(ctx, roomID, bob)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(saved.ID, history[0].Message.ID)
	unread, err := env.messages.UnreadCount(ctx, roomID, bob)
	req.NoError(err)
	req.Equal(1, unread)
}

func TestGetHistory_OrderedByCreationTime(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Ops", alice, bob)

	// Given timestamps handed out out of order, as by processes with skewed inserts
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2, t3 := t1.Add(time.Second), t1.Add(2*time.Second)
	clock := []time.Time{t3, t1, t2, t2}
	env.messages.now = func() time.Time {
		next := clock[0]
		clock = clock[1:]
		return next
	}
	for _, body := range []string{"third", "first", "second", "second bis"} {
		_, err := env.messages.SubmitMessage(ctx, roomID, alice, body)
		req.NoError(err)
	}

	// When bob reads the history
	history, err := env.messages.GetHistory(ctx, roomID, bob)

	// Then it follows creation time, insertion order breaking ties
	req.NoError(err)
	bodies := lo.Map(history, func(e domain.HistoryEntry, _ int) string { return e.Message.Body })
	req.Equal([]string{"first", "second", "second bis", "third"}, bodies)
	req.Equal("Alice", history[0].Sender.Name)
}

func TestGetHistory_Rejections(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)
	roomID := env.groupRoom(t, "Ops", alice)

	_, err := env.messages.GetHistory(ctx, roomID, bob)
	req.ErrorIs(err, errors.ErrNotAParticipant)

	_, err = env.messages.GetHistory(ctx, 4242, alice)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestSearch_ParticipantOnly(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index, err := searchindex.Open(bluge.InMemoryOnlyConfig(), logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })
	env := newTestEnv(t, nil, index)
	roomID := env.groupRoom(t, "Ops", alice, bob)

	// Given an indexed message
	saved, err := env.messages.SubmitMessage(ctx, roomID, alice, "the invoice is paid")
	req.NoError(err)
	req.NoError(index.IndexMessage(domain.NewOutboundMessage(saved, domain.Member{Identity: alice, Name: "Alice"})))

	// When bob searches the room
	hits, err := env.messages.Search(ctx, roomID, bob, "invoice")

	// Then the message is found
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(saved.ID.String(), hits[0].MessageID)

	// And outsiders or blank queries are rejected
	_, err = env.messages.Search(ctx, roomID, carol, "invoice")
	req.ErrorIs(err, errors.ErrNotAParticipant)
	_, err = env.messages.Search(ctx, roomID, bob, "  ")
	req.ErrorIs(err, errors.ErrInvalidRequest)
}

func TestSearch_SkipsHitsMissingFromStore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index, err := searchindex.Open(bluge.InMemoryOnlyConfig(), logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })
	env := newTestEnv(t, nil, index)
	roomID := env.groupRoom(t, "Ops", alice, bob)

	// Given one stored message and one that only the index knows about
	saved, err := env.messages.SubmitMessage(ctx, roomID, alice, "invoice sent")
	req.NoError(err)
	req.NoError(index.IndexMessage(domain.NewOutboundMessage(saved, domain.Member{Identity: alice})))
	gone := domain.NewMessage(roomID, alice, "invoice lost", time.Now())
	req.NoError(index.IndexMessage(domain.NewOutboundMessage(gone, domain.Member{Identity: alice})))

	// When searching
	hits, err := env.messages.Search(ctx, roomID, bob, "invoice")

	// Then only the stored message is returned
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(saved.ID.String(), hits[0].MessageID)
}
