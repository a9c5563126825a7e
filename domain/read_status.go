package domain

import "github.com/google/uuid"

// ReadStatus marks whether one participant has read one message.
// Rows exist only for participants present when the message was created.
type ReadStatus struct {
	MessageID uuid.UUID
	RoomID    RoomID
	Identity  string
	IsRead    bool
}

// NewReadStatuses creates one status per participant; the sender's own is already read.
func NewReadStatuses(message Message, participants []Participant) []ReadStatus {
	statuses := make([]ReadStatus, 0, len(participants))
	for _, p := range participants {
		statuses = append(statuses, ReadStatus{
			MessageID: message.ID,
			RoomID:    message.RoomID,
			Identity:  p.Identity,
			IsRead:    p.Identity == message.Sender,
		})
	}
	return statuses
}

// MarkRead never flips a status back to unread.
func (s ReadStatus) MarkRead() ReadStatus {
	s.IsRead = true
	return s
}
