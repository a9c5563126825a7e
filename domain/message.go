// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
// History is ordered by CreatedAt then Seq, the store-assigned insertion sequence.
type Message struct {
	ID        uuid.UUID
	RoomID    RoomID
	Sender    string
	Body      string
	Lang      string
	CreatedAt time.Time
	Seq       uint64
}

func NewMessage(roomID RoomID, sender, body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		CreatedAt: at,
	}
}

// HistoryEntry pairs a message with its sender's directory entry.
type HistoryEntry struct {
	Message Message
	Sender  Member
}

// Before reports whether m sorts before other in a room history.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.Seq < other.Seq
	}
	return m.CreatedAt.Before(other.CreatedAt)
}

// SearchHit is a message matched by the full-text index.
type SearchHit struct {
	MessageID string
	RoomID    RoomID
	Sender    string
	Body      string
	CreatedAt time.Time
	Score     float64
}
