package search

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/domain/search"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(bluge.InMemoryOnlyConfig(), logs.GetLoggerFromLevel(slog.LevelError))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func outbound(roomID domain.RoomID, sender, body string) domain.OutboundMessage {
	msg := domain.NewMessage(roomID, sender, body, time.Now().UTC())
	return domain.NewOutboundMessage(msg, domain.Member{Identity: sender})
}

func TestIndex_SearchIsScopedToRoom(t *testing.T) {
	req := require.New(t)
	idx := newTestIndex(t)
	ctx := context.Background()

	// Given messages in two rooms fed through the bridge
	inRoom := outbound(1, "alice@x.com", "the invoice for march is ready")
	req.NoError(idx.Consume(ctx, event.MessageBroadcast{Message: inRoom}))
	req.NoError(idx.Consume(ctx, event.MessageBroadcast{Message: outbound(1, "bob@x.com", "lunch at noon")}))
	req.NoError(idx.Consume(ctx, event.MessageBroadcast{Message: outbound(2, "bob@x.com", "another invoice")}))

	// When searching room 1
	hits, err := idx.Search(ctx, 1, search.NewSearchQuery("invoice"))

	// Then only its matching message comes back
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(inRoom.MessageID, hits[0].MessageID)
	req.Equal("alice@x.com", hits[0].Sender)
	req.Equal(inRoom.Message, hits[0].Body)
	req.True(inRoom.CreatedAt.Equal(hits[0].CreatedAt))
}

func TestIndex_SenderFilterAndIdempotentIndexing(t *testing.T) {
	req := require.New(t)
	idx := newTestIndex(t)
	ctx := context.Background()

	msg := outbound(1, "bob@x.com", "deploy done")
	req.NoError(idx.IndexMessage(msg))
	req.NoError(idx.IndexMessage(msg))
	req.NoError(idx.IndexMessage(outbound(1, "alice@x.com", "deploy started")))

	hits, err := idx.Search(ctx, 1, search.NewSearchQuery("deploy --from bob@x.com"))

	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(msg.MessageID, hits[0].MessageID)
}
