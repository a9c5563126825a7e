package repositories

import (
	"chat-relay/domain"
	"context"
)

// ChatStore runs units of work against the chat records.
// Update commits every write of fn atomically or none of them; a write
// conflicting with a concurrent transaction surfaces as errors.ErrPersistenceConflict.
type ChatStore interface {
	View(ctx context.Context, fn func(tx ChatTx) error) error
	Update(ctx context.Context, fn func(tx ChatTx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ChatTx is the repository surface available inside one transaction.
type ChatTx interface {
	// GetRoom fails with errors.ErrRoomNotFound.
	GetRoom(id domain.RoomID) (domain.Room, error)
	// LockRoom reads the room for a membership change, serialising it
	// with message submissions and other membership changes of that room.
	LockRoom(id domain.RoomID) (domain.Room, error)
	// SaveRoom assigns an id to a new room.
	SaveRoom(room domain.Room) (domain.Room, error)
	// DeleteRoom removes the room with its participants, messages and read statuses.
	DeleteRoom(id domain.RoomID) error
	ListGroupRooms() ([]domain.Room, error)

	// GetMember fails with errors.ErrIdentityNotFound.
	GetMember(identity string) (domain.Member, error)
	SaveMember(member domain.Member) error

	IsParticipant(roomID domain.RoomID, identity string) (bool, error)
	ListParticipants(roomID domain.RoomID) ([]domain.Participant, error)
	ListRoomsOf(identity string) ([]domain.Room, error)
	SaveParticipant(participant domain.Participant) error
	DeleteParticipant(roomID domain.RoomID, identity string) error

	// SaveMessage assigns the insertion sequence.
	SaveMessage(message domain.Message) (domain.Message, error)
	// ListMessages returns the room history ordered by CreatedAt then Seq.
	ListMessages(roomID domain.RoomID) ([]domain.Message, error)
	GetMessage(id string) (domain.Message, error)

	SaveReadStatuses(statuses []domain.ReadStatus) error
	ListUnread(roomID domain.RoomID, identity string) ([]domain.ReadStatus, error)

	// GetPrivateRoom fails with errors.ErrRoomNotFound when the pair owns no room.
	GetPrivateRoom(pair domain.PrivatePair) (domain.RoomID, error)
	// SavePrivateRoom fails with errors.ErrPersistenceConflict when the pair is taken.
	SavePrivateRoom(pair domain.PrivatePair, roomID domain.RoomID) error
}
