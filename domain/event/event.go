package event

import (
	"chat-relay/domain"
	"time"
)

type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageBroadcast is one bridge delivery: the decoded message plus the
// raw payload forwarded verbatim to connections.
type MessageBroadcast struct {
	Message    domain.OutboundMessage
	Payload    []byte
	ReceivedAt time.Time
}

func (m MessageBroadcast) RoomID() domain.RoomID {
	return m.Message.RoomID
}
