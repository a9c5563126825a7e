package storage

import (
	"chat-relay/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDescribeRecord(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	raw, err := encodeRoom(domain.Room{ID: 4, Name: "Team", IsGroup: true, Members: 2, CreatedAt: at})
	req.NoError(err)
	room := DescribeRecord("room:4", raw)
	req.Equal("ROOM", room.Kind)
	req.Equal("4", room.Entity)
	req.True(at.Equal(room.At))
	req.Equal(`"Team" group=true members=2`, room.Detail)

	msg := domain.NewMessage(4, "alice@x.com", "hello", at)
	raw, err = encodeMessage(msg)
	req.NoError(err)
	described := DescribeRecord(string(messageKey(msg)), raw)
	req.Equal("MSG", described.Kind)
	req.Equal(msg.ID.String(), described.Entity)
	req.Contains(described.Detail, "alice@x.com: hello")

	pair := DescribeRecord(string(pairKey(domain.NewPrivatePair("bob@x.com", "alice@x.com"))), []byte("4"))
	req.Equal("alice@x.com/bob@x.com", pair.Entity)
	req.Equal("-> 4", pair.Detail)
	req.Equal("alice@x.com/4", DescribeRecord(string(identityRoomKey("alice@x.com", 4)), nil).Entity)
	req.Contains(DescribeRecord("room:9", []byte{0xff, 0xff}).Detail, "undecodable")
}
