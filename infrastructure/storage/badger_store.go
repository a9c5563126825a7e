package storage

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	roomSequenceKey    = "seq:room"
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 100
)

func roomKey(id domain.RoomID) []byte { return fmt.Appendf(nil, "room:%d", id) }

func memberKey(identity string) []byte { return []byte("member:" + identity) }

// identityTerminator closes every identity embedded in a composite key, so
// the prefix of one identity never matches the rows of a longer one.
const identityTerminator = "\x00"

func identitySegment(identity string) string { return identity + identityTerminator }

func participantKey(roomID domain.RoomID, identity string) []byte {
	return []byte(participantPrefix(roomID) + identitySegment(identity))
}

func participantPrefix(roomID domain.RoomID) string { return fmt.Sprintf("part:%d:", roomID) }

func identityRoomKey(identity string, roomID domain.RoomID) []byte {
	return fmt.Appendf(nil, "%s%d", identityRoomPrefix(identity), roomID)
}

func identityRoomPrefix(identity string) string { return "ident:" + identitySegment(identity) }

// messageKey is formatted as "msg:{room}:{nanos}:{seq}", both zero padded,
// so that a prefix scan returns the room history in (CreatedAt, Seq) order.
func messageKey(m domain.Message) []byte {
	return fmt.Appendf(nil, "msg:%d:%019d:%020d", m.RoomID, m.CreatedAt.UnixNano(), m.Seq)
}

func messagePrefix(roomID domain.RoomID) string { return fmt.Sprintf("msg:%d:", roomID) }

func messageIDKey(id string) []byte { return []byte("msgid:" + id) }

func readStatusKey(s domain.ReadStatus) []byte {
	return []byte(readStatusPrefix(s.RoomID, s.Identity) + s.MessageID.String())
}

func readStatusPrefix(roomID domain.RoomID, identity string) string {
	return fmt.Sprintf("rs:%d:%s", roomID, identitySegment(identity))
}

func pairKey(pair domain.PrivatePair) []byte {
	return []byte("pair:" + identitySegment(pair.Low) + identitySegment(pair.High))
}

// BadgerStore keeps chat records in an embedded Badger database.
// Badger transactions are optimistic: a transaction whose reads were
// overwritten by a concurrent commit fails with errors.ErrPersistenceConflict.
type BadgerStore struct {
	db         *badger.DB
	log        *slog.Logger
	roomSeq    *badger.Sequence
	messageSeq *badger.Sequence
}

// NewBadgerStore leases the room and message sequences of db. Close releases them.
func NewBadgerStore(db *badger.DB, log *slog.Logger) (*BadgerStore, error) {
	roomSeq, err := db.GetSequence([]byte(roomSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("room sequence: %w", err)
	}
	messageSeq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		_ = roomSeq.Release()
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &BadgerStore{db: db, log: log, roomSeq: roomSeq, messageSeq: messageSeq}, nil
}

// OpenBadgerStore opens the database at path and takes ownership of it.
func OpenBadgerStore(path string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, err
	}
	store, err := NewBadgerStore(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying database to the debug inspector.
func (s *BadgerStore) DB() *badger.DB { return s.db }

func (s *BadgerStore) View(ctx context.Context, fn func(tx repositories.ChatTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, store: s})
	})
}

func (s *BadgerStore) Update(ctx context.Context, fn func(tx repositories.ChatTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, store: s})
	})
	if goerrors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceConflict, err)
	}
	return err
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	var errs []error
	errs = append(errs, s.roomSeq.Release(), s.messageSeq.Release())
	errs = append(errs, s.db.Close())
	return goerrors.Join(errs...)
}

type badgerTx struct {
	txn   *badger.Txn
	store *BadgerStore
}

func (t *badgerTx) get(key []byte, notFound error) ([]byte, error) {
	item, err := t.txn.Get(key)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// scan visits every key/value under prefix in key order.
// The iterator is closed before returning, the txn may open another one afterwards.
func (t *badgerTx) scan(prefix string, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := t.txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (t *badgerTx) keys(prefix string) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)
	defer it.Close()
	var keys [][]byte
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

func (t *badgerTx) GetRoom(id domain.RoomID) (domain.Room, error) {
	raw, err := t.get(roomKey(id), errors.ErrRoomNotFound)
	if err != nil {
		return domain.Room{}, err
	}
	return decodeRoom(raw)
}

// LockRoom is a tracked read: any concurrent transaction that rewrites the
// room before this one commits makes the commit fail with a conflict.
func (t *badgerTx) LockRoom(id domain.RoomID) (domain.Room, error) {
	return t.GetRoom(id)
}

func (t *badgerTx) SaveRoom(room domain.Room) (domain.Room, error) {
	if room.ID == 0 {
		next, err := t.store.roomSeq.Next()
		if err != nil {
			return domain.Room{}, fmt.Errorf("next room id: %w", err)
		}
		room.ID = domain.RoomID(next + 1)
	}
	raw, err := encodeRoom(room)
	if err != nil {
		return domain.Room{}, err
	}
	return room, t.txn.Set(roomKey(room.ID), raw)
}

func (t *badgerTx) DeleteRoom(id domain.RoomID) error {
	room, err := t.GetRoom(id)
	if err != nil {
		return err
	}
	participants, err := t.ListParticipants(id)
	if err != nil {
		return err
	}
	if !room.IsGroup && len(participants) == 2 {
		pair := domain.NewPrivatePair(participants[0].Identity, participants[1].Identity)
		if err := t.txn.Delete(pairKey(pair)); err != nil {
			return err
		}
	}
	for _, p := range participants {
		if err := t.txn.Delete(identityRoomKey(p.Identity, id)); err != nil {
			return err
		}
	}
	messages, err := t.ListMessages(id)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err := t.txn.Delete(messageIDKey(m.ID.String())); err != nil {
			return err
		}
	}
	for _, prefix := range []string{participantPrefix(id), messagePrefix(id), fmt.Sprintf("rs:%d:", id)} {
		for _, key := range t.keys(prefix) {
			if err := t.txn.Delete(key); err != nil {
				return err
			}
		}
	}
	return t.txn.Delete(roomKey(id))
}

func (t *badgerTx) ListGroupRooms() ([]domain.Room, error) {
	var rooms []domain.Room
	err := t.scan("room:", func(_, value []byte) error {
		room, err := decodeRoom(value)
		if err != nil {
			return err
		}
		if room.IsGroup {
			rooms = append(rooms, room)
		}
		return nil
	})
	return rooms, err
}

func (t *badgerTx) GetMember(identity string) (domain.Member, error) {
	raw, err := t.get(memberKey(identity), errors.ErrIdentityNotFound)
	if err != nil {
		return domain.Member{}, err
	}
	return decodeMember(raw)
}

func (t *badgerTx) SaveMember(member domain.Member) error {
	return t.txn.Set(memberKey(member.Identity), encodeMember(member))
}

func (t *badgerTx) IsParticipant(roomID domain.RoomID, identity string) (bool, error) {
	_, err := t.txn.Get(participantKey(roomID, identity))
	switch {
	case err == nil:
		return true, nil
	case goerrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (t *badgerTx) ListParticipants(roomID domain.RoomID) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := t.scan(participantPrefix(roomID), func(_, value []byte) error {
		p, err := decodeParticipant(value)
		if err != nil {
			return err
		}
		participants = append(participants, p)
		return nil
	})
	return participants, err
}

func (t *badgerTx) ListRoomsOf(identity string) ([]domain.Room, error) {
	prefix := identityRoomPrefix(identity)
	var ids []domain.RoomID
	for _, key := range t.keys(prefix) {
		id, err := strconv.ParseInt(strings.TrimPrefix(string(key), prefix), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupted key %q: %w", key, err)
		}
		ids = append(ids, domain.RoomID(id))
	}
	rooms := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		room, err := t.GetRoom(id)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (t *badgerTx) SaveParticipant(p domain.Participant) error {
	raw, err := encodeParticipant(p)
	if err != nil {
		return err
	}
	if err := t.txn.Set(participantKey(p.RoomID, p.Identity), raw); err != nil {
		return err
	}
	return t.txn.Set(identityRoomKey(p.Identity, p.RoomID), nil)
}

func (t *badgerTx) DeleteParticipant(roomID domain.RoomID, identity string) error {
	if err := t.txn.Delete(participantKey(roomID, identity)); err != nil {
		return err
	}
	return t.txn.Delete(identityRoomKey(identity, roomID))
}

func (t *badgerTx) SaveMessage(m domain.Message) (domain.Message, error) {
	seq, err := t.store.messageSeq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("next message sequence: %w", err)
	}
	m.Seq = seq
	raw, err := encodeMessage(m)
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(m)
	if err := t.txn.Set(key, raw); err != nil {
		return domain.Message{}, err
	}
	return m, t.txn.Set(messageIDKey(m.ID.String()), key)
}

func (t *badgerTx) ListMessages(roomID domain.RoomID) ([]domain.Message, error) {
	var messages []domain.Message
	err := t.scan(messagePrefix(roomID), func(_, value []byte) error {
		m, err := decodeMessage(value)
		if err != nil {
			return err
		}
		messages = append(messages, m)
		return nil
	})
	return messages, err
}

func (t *badgerTx) GetMessage(id string) (domain.Message, error) {
	key, err := t.get(messageIDKey(id), fmt.Errorf("message %s: %w", id, errors.ErrMessageNotFound))
	if err != nil {
		return domain.Message{}, err
	}
	raw, err := t.get(key, fmt.Errorf("message %s: %w", id, errors.ErrMessageNotFound))
	if err != nil {
		return domain.Message{}, err
	}
	return decodeMessage(raw)
}

func (t *badgerTx) SaveReadStatuses(statuses []domain.ReadStatus) error {
	for _, s := range statuses {
		if err := t.txn.Set(readStatusKey(s), encodeReadStatus(s)); err != nil {
			return err
		}
	}
	return nil
}

func (t *badgerTx) ListUnread(roomID domain.RoomID, identity string) ([]domain.ReadStatus, error) {
	var unread []domain.ReadStatus
	err := t.scan(readStatusPrefix(roomID, identity), func(_, value []byte) error {
		s, err := decodeReadStatus(value)
		if err != nil {
			return err
		}
		if !s.IsRead {
			unread = append(unread, s)
		}
		return nil
	})
	return unread, err
}

func (t *badgerTx) GetPrivateRoom(pair domain.PrivatePair) (domain.RoomID, error) {
	raw, err := t.get(pairKey(pair), errors.ErrRoomNotFound)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupted pair %s: %w", pair, err)
	}
	return domain.RoomID(id), nil
}

// SavePrivateRoom reads the pair key first so that two transactions
// claiming the same pair conflict on commit.
func (t *badgerTx) SavePrivateRoom(pair domain.PrivatePair, roomID domain.RoomID) error {
	key := pairKey(pair)
	_, err := t.txn.Get(key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: pair %s already owns a room", errors.ErrPersistenceConflict, pair)
	case !goerrors.Is(err, badger.ErrKeyNotFound):
		return err
	}
	return t.txn.Set(key, []byte(roomID.String()))
}
