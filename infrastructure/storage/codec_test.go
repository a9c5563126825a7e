package storage

import (
	"chat-relay/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodec_Message(t *testing.T) {
	req := require.New(t)
	msg := domain.NewMessage(12, "alice@x.com", "bonjour tout le monde", time.Now())
	msg.Lang = "fra"
	msg.Seq = 42

	raw, err := encodeMessage(msg)
	req.NoError(err)
	decoded, err := decodeMessage(raw)
	req.NoError(err)

	req.Equal(msg.ID, decoded.ID)
	req.Equal(msg.Body, decoded.Body)
	req.Equal(msg.Lang, decoded.Lang)
	req.Equal(msg.Seq, decoded.Seq)
	req.True(msg.CreatedAt.Equal(decoded.CreatedAt))
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	req := require.New(t)
	raw := encodeMember(domain.Member{Identity: "alice@x.com", Name: "Alice"})
	// A field written by a newer version
	raw = protowire.AppendTag(raw, 99, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 7)

	member, err := decodeMember(raw)

	req.NoError(err)
	req.Equal("Alice", member.Name)
}

func TestCodec_RejectsTruncatedRecord(t *testing.T) {
	req := require.New(t)
	raw, err := encodeRoom(domain.NewGroupRoom("Team", time.Now()))
	req.NoError(err)

	_, err = decodeRoom(raw[:len(raw)-3])

	req.Error(err)
}
