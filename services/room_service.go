package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"
)

// RoomService manages group and private rooms and their participants.
type RoomService struct {
	log      *slog.Logger
	store    repositories.ChatStore
	attempts int
	now      func() time.Time
}

// NewRoomService returns a service working on store with the default conflict retry budget.
func NewRoomService(log *slog.Logger, store repositories.ChatStore) *RoomService {
	return &RoomService{
		log:      log,
		store:    store,
		attempts: defaultConflictAttempts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateGroupRoom creates the room with its creator as first participant.
// Names are not unique.
func (s *RoomService) CreateGroupRoom(ctx context.Context, name, creator string) (domain.RoomID, error) {
	if err := validateRoomName(name); err != nil {
		return 0, err
	}
	var roomID domain.RoomID
	err := s.store.Update(ctx, func(tx repositories.ChatTx) error {
		if _, err := tx.GetMember(creator); err != nil {
			return err
		}
		room, err := tx.SaveRoom(domain.NewGroupRoom(name, s.now()).Joined())
		if err != nil {
			return err
		}
		roomID = room.ID
		return tx.SaveParticipant(domain.NewParticipant(room.ID, creator, room.CreatedAt))
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Group room created", "room_id", roomID, "creator", creator)
	return roomID, nil
}

// ListGroupRooms lists every group room, private rooms are never exposed.
func (s *RoomService) ListGroupRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		var err error
		rooms, err = tx.ListGroupRooms()
		return err
	})
	return rooms, err
}

// JoinGroupRoom is a no-op when the identity already participates.
func (s *RoomService) JoinGroupRoom(ctx context.Context, roomID domain.RoomID, identity string) error {
	joined := false
	err := retryOnConflict(ctx, s.attempts, func() error {
		joined = false
		return s.store.Update(ctx, func(tx repositories.ChatTx) error {
			room, err := tx.LockRoom(roomID)
			if err != nil {
				return err
			}
			if _, err := tx.GetMember(identity); err != nil {
				return err
			}
			if !room.IsGroup {
				return fmt.Errorf("%w: room %d", errors.ErrNotAGroupRoom, roomID)
			}
			already, err := tx.IsParticipant(roomID, identity)
			if err != nil || already {
				return err
			}
			if _, err := tx.SaveRoom(room.Joined()); err != nil {
				return err
			}
			joined = true
			return tx.SaveParticipant(domain.NewParticipant(roomID, identity, s.now()))
		})
	})
	if err == nil && joined {
		s.log.Info("Room joined", "room_id", roomID, "identity", identity)
	}
	return err
}

// LeaveGroupRoom deletes the room with its history once its last participant leaves.
func (s *RoomService) LeaveGroupRoom(ctx context.Context, roomID domain.RoomID, identity string) error {
	deleted := false
	err := retryOnConflict(ctx, s.attempts, func() error {
		deleted = false
		return s.store.Update(ctx, func(tx repositories.ChatTx) error {
			room, err := tx.LockRoom(roomID)
			if err != nil {
				return err
			}
			if !room.IsGroup {
				return fmt.Errorf("%w: room %d", errors.ErrNotAGroupRoom, roomID)
			}
			if err := requireParticipant(tx, roomID, identity); err != nil {
				return err
			}
			if err := tx.DeleteParticipant(roomID, identity); err != nil {
				return err
			}
			room = room.Left()
			if room.IsEmpty() {
				deleted = true
				return tx.DeleteRoom(roomID)
			}
			_, err = tx.SaveRoom(room)
			return err
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("Room left", "room_id", roomID, "identity", identity, "room_deleted", deleted)
	return nil
}

// GetOrCreatePrivateRoom returns the single private room of the unordered pair.
// Two concurrent creations race on the pair key: the loser's commit conflicts
// and it reads the winner's room instead.
func (s *RoomService) GetOrCreatePrivateRoom(ctx context.Context, a, b string) (domain.RoomID, error) {
	if a == b {
		return 0, fmt.Errorf("%w: private room with oneself", errors.ErrInvalidRequest)
	}
	pair := domain.NewPrivatePair(a, b)
	roomID, created, err := s.createPrivateRoom(ctx, a, b, pair)
	if goerrors.Is(err, errors.ErrPersistenceConflict) {
		s.log.Debug("Private room race lost, reading winner", "pair", pair.String())
		return s.lookupPrivateRoom(ctx, pair)
	}
	if err != nil {
		return 0, err
	}
	if created {
		s.log.Info("Private room created", "room_id", roomID, "pair", pair.String())
	}
	return roomID, nil
}

func (s *RoomService) createPrivateRoom(ctx context.Context, a, b string, pair domain.PrivatePair) (domain.RoomID, bool, error) {
	var roomID domain.RoomID
	created := false
	err := s.store.Update(ctx, func(tx repositories.ChatTx) error {
		memberA, err := tx.GetMember(a)
		if err != nil {
			return err
		}
		memberB, err := tx.GetMember(b)
		if err != nil {
			return err
		}
		existing, err := tx.GetPrivateRoom(pair)
		if err == nil {
			roomID = existing
			return nil
		}
		if !goerrors.Is(err, errors.ErrRoomNotFound) {
			return err
		}

		room, err := domain.NewPrivateRoom(memberA, memberB, s.now())
		if err != nil {
			return err
		}
		if room, err = tx.SaveRoom(room.Joined().Joined()); err != nil {
			return err
		}
		for _, identity := range []string{a, b} {
			if err := tx.SaveParticipant(domain.NewParticipant(room.ID, identity, room.CreatedAt)); err != nil {
				return err
			}
		}
		if err := tx.SavePrivateRoom(pair, room.ID); err != nil {
			return err
		}
		roomID, created = room.ID, true
		return nil
	})
	return roomID, created, err
}

func (s *RoomService) lookupPrivateRoom(ctx context.Context, pair domain.PrivatePair) (domain.RoomID, error) {
	var roomID domain.RoomID
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		var err error
		roomID, err = tx.GetPrivateRoom(pair)
		return err
	})
	if goerrors.Is(err, errors.ErrRoomNotFound) {
		return 0, fmt.Errorf("%w: private room of %s", errors.ErrPersistenceConflict, pair.String())
	}
	return roomID, err
}

// ListMyRooms returns every room of the identity with its unread count.
func (s *RoomService) ListMyRooms(ctx context.Context, identity string) ([]domain.RoomSummary, error) {
	var summaries []domain.RoomSummary
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		rooms, err := tx.ListRoomsOf(identity)
		if err != nil {
			return err
		}
		summaries = make([]domain.RoomSummary, 0, len(rooms))
		for _, room := range rooms {
			unread, err := tx.ListUnread(room.ID, identity)
			if err != nil {
				return err
			}
			summaries = append(summaries, domain.RoomSummary{Room: room, UnreadCount: len(unread)})
		}
		return nil
	})
	return summaries, err
}

// IsRoomParticipant answers false for a room that does not exist.
func (s *RoomService) IsRoomParticipant(ctx context.Context, roomID domain.RoomID, identity string) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		var err error
		ok, err = tx.IsParticipant(roomID, identity)
		return err
	})
	return ok, err
}
