package domain

import (
	"chat-relay/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeInboundFrame(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"send frame", `{"type":"SEND","roomId":3,"message":"hi"}`, false},
		{"subscribe frame", `{"type":"SUBSCRIBE","roomId":3}`, false},
		{"unknown type", `{"type":"TYPING","roomId":3}`, true},
		{"missing room", `{"type":"SEND","message":"hi"}`, true},
		{"not json", `room 3 hi`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := DecodeInboundFrame([]byte(tt.raw))
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidRequest)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestOutboundMessage_CarriesRoomAndSender(t *testing.T) {
	req := require.New(t)
	msg := NewMessage(RoomID(7), "alice@x.com", "hello", time.Now().UTC())

	raw, err := NewOutboundMessage(msg, Member{Identity: "alice@x.com", Name: "Alice"}).Encode()
	req.NoError(err)

	decoded, err := DecodeOutboundMessage(raw)
	req.NoError(err)
	req.Equal(RoomID(7), decoded.RoomID)
	req.Equal("Alice", decoded.SenderName)
	req.Equal(msg.ID.String(), decoded.MessageID)

	_, err = DecodeOutboundMessage([]byte(`{"type":"ERROR","roomId":7}`))
	req.Error(err)
}
