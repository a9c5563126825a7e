package domain

import (
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"time"
)

// ChatTopic is the single broadcast channel carrying chat traffic between processes.
const ChatTopic = "chat"

type FrameType string

const (
	FrameSend        FrameType = "SEND"
	FrameSubscribe   FrameType = "SUBSCRIBE"
	FrameUnsubscribe FrameType = "UNSUBSCRIBE"
	FrameMessage     FrameType = "MESSAGE"
	FrameError       FrameType = "ERROR"
	FrameAck         FrameType = "ACK"
)

// InboundFrame is a text frame received from a client connection.
type InboundFrame struct {
	Type        FrameType `json:"type"`
	RoomID      RoomID    `json:"roomId"`
	Message     string    `json:"message,omitempty"`
	SenderEmail string    `json:"senderEmail,omitempty"`
}

// DecodeInboundFrame rejects unknown frame types and frames without a room.
func DecodeInboundFrame(raw []byte) (InboundFrame, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return InboundFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	switch frame.Type {
	case FrameSend, FrameSubscribe, FrameUnsubscribe:
	default:
		return InboundFrame{}, fmt.Errorf("%w: unknown frame type %q", errors.ErrInvalidRequest, frame.Type)
	}
	if frame.RoomID <= 0 {
		return InboundFrame{}, fmt.Errorf("%w: missing roomId", errors.ErrInvalidRequest)
	}
	return frame, nil
}

// OutboundMessage is published on the bridge and forwarded verbatim to clients.
type OutboundMessage struct {
	Type        FrameType `json:"type"`
	RoomID      RoomID    `json:"roomId"`
	MessageID   string    `json:"messageId"`
	SenderEmail string    `json:"senderEmail"`
	SenderName  string    `json:"senderName,omitempty"`
	Message     string    `json:"message"`
	Lang        string    `json:"lang,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewOutboundMessage(message Message, sender Member) OutboundMessage {
	return OutboundMessage{
		Type:        FrameMessage,
		RoomID:      message.RoomID,
		MessageID:   message.ID.String(),
		SenderEmail: message.Sender,
		SenderName:  sender.DisplayName(),
		Message:     message.Body,
		Lang:        message.Lang,
		CreatedAt:   message.CreatedAt,
	}
}

func (o OutboundMessage) Encode() ([]byte, error) {
	return json.Marshal(o)
}

func DecodeOutboundMessage(raw []byte) (OutboundMessage, error) {
	var msg OutboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return OutboundMessage{}, err
	}
	if msg.Type != FrameMessage || msg.RoomID <= 0 {
		return OutboundMessage{}, fmt.Errorf("%w: not a chat message", errors.ErrInvalidRequest)
	}
	return msg, nil
}

// ReplyFrame answers a client frame on its own connection only.
type ReplyFrame struct {
	Type      FrameType `json:"type"`
	RoomID    RoomID    `json:"roomId,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// NewErrorFrame builds the ERROR reply of err, with its machine readable code.
func NewErrorFrame(roomID RoomID, err error) ReplyFrame {
	return ReplyFrame{Type: FrameError, RoomID: roomID, Code: errors.Code(err), Message: err.Error()}
}

func (r ReplyFrame) Encode() []byte {
	// A ReplyFrame only holds strings and integers.
	b, _ := json.Marshal(r)
	return b
}
