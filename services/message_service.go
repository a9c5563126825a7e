package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/domain/search"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// MessageIndex answers full-text queries over the messages of one room.
type MessageIndex interface {
	Search(ctx context.Context, roomID domain.RoomID, q search.Query) ([]domain.SearchHit, error)
}

// MessageService is the message and read-status engine of the rooms.
// Writes that hit a persistence conflict are retried a bounded number of times.
type MessageService struct {
	log       *slog.Logger
	store     repositories.ChatStore
	publisher contract.Publisher
	moderator *moderation.Moderator
	index     MessageIndex
	telemetry event.Handler
	attempts  int
	now       func() time.Time
}

// NewMessageService wires the store, the bridge publisher and the moderator.
// index may be nil, Search then returns no hit. telemetry receives the censorship events.
func NewMessageService(
	log *slog.Logger,
	store repositories.ChatStore,
	publisher contract.Publisher,
	moderator *moderation.Moderator,
	index MessageIndex,
	telemetry event.Handler,
) *MessageService {
	return &MessageService{
		log:       log,
		store:     store,
		publisher: publisher,
		moderator: moderator,
		index:     index,
		telemetry: telemetry,
		attempts:  defaultConflictAttempts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitMessage persists the message with one read status per current
// participant, then publishes it on the chat topic.
// A publish failure returns the persisted message with ErrBridgeUnavailable.
func (s *MessageService) SubmitMessage(ctx context.Context, roomID domain.RoomID, sender, body string) (domain.Message, error) {
	bodyErr := validateBody(body)
	clean := s.moderator.Sanitize(body)

	var saved domain.Message
	var author domain.Member
	err := retryOnConflict(ctx, s.attempts, func() error {
		return s.store.Update(ctx, func(tx repositories.ChatTx) error {
			if _, err := tx.GetRoom(roomID); err != nil {
				return err
			}
			member, err := tx.GetMember(sender)
			if err != nil {
				return err
			}
			if err := requireParticipant(tx, roomID, sender); err != nil {
				return err
			}
			if bodyErr != nil {
				return bodyErr
			}
			participants, err := tx.ListParticipants(roomID)
			if err != nil {
				return err
			}
			msg := domain.NewMessage(roomID, sender, clean.Body, s.now())
			msg.Lang = clean.Lang
			if saved, err = tx.SaveMessage(msg); err != nil {
				return err
			}
			author = member
			return tx.SaveReadStatuses(domain.NewReadStatuses(saved, participants))
		})
	})
	if err != nil {
		return domain.Message{}, err
	}

	if len(clean.Words) > 0 {
		s.telemetry.Handle(event.NewEvent(event.CensorshipHitType, event.Censored{
			RoomID: int64(roomID),
			Sender: sender,
			Words:  clean.Words,
		}))
	}

	payload, err := domain.NewOutboundMessage(saved, author).Encode()
	if err != nil {
		return saved, fmt.Errorf("encode message %s: %w", saved.ID, err)
	}
	if err := s.publisher.Publish(ctx, domain.ChatTopic, payload); err != nil {
		s.log.Warn("Message persisted but not published", "room_id", roomID, "message_id", saved.ID, "error", err)
		if goerrors.Is(err, errors.ErrBridgeUnavailable) {
			return saved, fmt.Errorf("publish message %s: %w", saved.ID, err)
		}
		return saved, fmt.Errorf("%w: publish message %s: %v", errors.ErrBridgeUnavailable, saved.ID, err)
	}
	s.log.Debug("Message submitted", "room_id", roomID, "message_id", saved.ID, "sender", sender)
	return saved, nil
}

// GetHistory returns the room messages ordered by creation time then insertion order.
func (s *MessageService) GetHistory(ctx context.Context, roomID domain.RoomID, requester string) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		if _, err := tx.GetRoom(roomID); err != nil {
			return err
		}
		if err := requireParticipant(tx, roomID, requester); err != nil {
			return err
		}
		messages, err := tx.ListMessages(roomID)
		if err != nil {
			return err
		}
		senders := make(map[string]domain.Member)
		for _, identity := range lo.Uniq(lo.Map(messages, func(m domain.Message, _ int) string { return m.Sender })) {
			member, err := tx.GetMember(identity)
			switch {
			case goerrors.Is(err, errors.ErrIdentityNotFound):
				member = domain.Member{Identity: identity}
			case err != nil:
				return err
			}
			senders[identity] = member
		}
		entries = lo.Map(messages, func(m domain.Message, _ int) domain.HistoryEntry {
			return domain.HistoryEntry{Message: m, Sender: senders[m.Sender]}
		})
		return nil
	})
	return entries, err
}

// AcknowledgeRead marks every unread status of the requester in the room as read
// and returns how many were flipped.
func (s *MessageService) AcknowledgeRead(ctx context.Context, roomID domain.RoomID, requester string) (int, error) {
	var flipped int
	err := retryOnConflict(ctx, s.attempts, func() error {
		return s.store.Update(ctx, func(tx repositories.ChatTx) error {
			if _, err := tx.GetRoom(roomID); err != nil {
				return err
			}
			unread, err := tx.ListUnread(roomID, requester)
			if err != nil {
				return err
			}
			flipped = len(unread)
			if flipped == 0 {
				return nil
			}
			return tx.SaveReadStatuses(lo.Map(unread, func(rs domain.ReadStatus, _ int) domain.ReadStatus {
				return rs.MarkRead()
			}))
		})
	})
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.log.Debug("Messages acknowledged", "room_id", roomID, "identity", requester, "count", flipped)
	}
	return flipped, nil
}

// UnreadCount is the number of messages of the room that identity has not acknowledged yet.
func (s *MessageService) UnreadCount(ctx context.Context, roomID domain.RoomID, identity string) (int, error) {
	var count int
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		if _, err := tx.GetRoom(roomID); err != nil {
			return err
		}
		unread, err := tx.ListUnread(roomID, identity)
		count = len(unread)
		return err
	})
	return count, err
}

// Search runs a full-text query over the room for one of its participants.
// Hits whose message no longer exists are dropped.
func (s *MessageService) Search(ctx context.Context, roomID domain.RoomID, requester, raw string) ([]domain.SearchHit, error) {
	query := search.NewSearchQuery(raw)
	if query.IsEmpty() {
		return nil, fmt.Errorf("%w: empty search query", errors.ErrInvalidRequest)
	}
	err := s.store.View(ctx, func(tx repositories.ChatTx) error {
		if _, err := tx.GetRoom(roomID); err != nil {
			return err
		}
		return requireParticipant(tx, roomID, requester)
	})
	if err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, nil
	}

	hits, err := s.index.Search(ctx, roomID, query)
	if err != nil {
		return nil, fmt.Errorf("search room %d: %w", roomID, err)
	}
	var live []domain.SearchHit
	err = s.store.View(ctx, func(tx repositories.ChatTx) error {
		for _, hit := range hits {
			msg, err := tx.GetMessage(hit.MessageID)
			if goerrors.Is(err, errors.ErrMessageNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if msg.RoomID == roomID {
				live = append(live, hit)
			}
		}
		return nil
	})
	return live, err
}

func requireParticipant(tx repositories.ChatTx, roomID domain.RoomID, identity string) error {
	ok, err := tx.IsParticipant(roomID, identity)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s in room %d", errors.ErrNotAParticipant, identity, roomID)
	}
	return nil
}
