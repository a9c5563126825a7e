// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant links one identity to one room, unique per (room, identity).
type Participant struct {
	RoomID   RoomID
	Identity string
	JoinedAt time.Time
}

func NewParticipant(roomID RoomID, identity string, at time.Time) Participant {
	return Participant{RoomID: roomID, Identity: identity, JoinedAt: at}
}

// Member is an entry of the identity directory.
type Member struct {
	Identity string
	Name     string
}

// DisplayName falls back to the local part of the identity.
func (m Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	for i, c := range m.Identity {
		if c == '@' {
			return m.Identity[:i]
		}
	}
	return m.Identity
}

// RoomSummary is a room as listed for one identity.
type RoomSummary struct {
	Room        Room
	UnreadCount int
}
