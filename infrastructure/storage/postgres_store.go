package storage

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	identity TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS rooms (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	is_group   BOOLEAN NOT NULL,
	members    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS participants (
	room_id   BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	identity  TEXT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (room_id, identity)
);
CREATE INDEX IF NOT EXISTS participants_identity_idx ON participants (identity);
CREATE TABLE IF NOT EXISTS messages (
	id         UUID PRIMARY KEY,
	room_id    BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	seq        BIGSERIAL,
	sender     TEXT NOT NULL,
	body       TEXT NOT NULL,
	lang       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_room_order_idx ON messages (room_id, created_at, seq);
CREATE TABLE IF NOT EXISTS read_statuses (
	message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	room_id    BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	identity   TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL,
	PRIMARY KEY (message_id, identity)
);
CREATE INDEX IF NOT EXISTS read_statuses_unread_idx ON read_statuses (room_id, identity) WHERE NOT is_read;
CREATE TABLE IF NOT EXISTS private_pairs (
	identity_low  TEXT NOT NULL,
	identity_high TEXT NOT NULL,
	room_id       BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	PRIMARY KEY (identity_low, identity_high)
);
`

const roomColumns = "id, name, is_group, members, created_at"

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// PostgresStore shares chat records between several processes.
// Membership changes take a row lock on the room; message submission
// takes a share lock, so both are serialised per room.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresStore runs View in read only transactions and Update in read committed ones.
// Call Migrate once before use.
func NewPostgresStore(pool *pgxpool.Pool, log *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log}
}

// Migrate creates the tables when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) View(ctx context.Context, fn func(tx repositories.ChatTx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, false, fn)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(tx repositories.ChatTx) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, true, fn)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, write bool, fn func(tx repositories.ChatTx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		return fn(&pgTx{ctx: ctx, tx: tx, write: write})
	})
	return mapPgError(err)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", errors.ErrPersistenceConflict, pgErr.Message)
		}
	}
	return err
}

type pgTx struct {
	ctx   context.Context
	tx    pgx.Tx
	write bool
}

func scanRoom(row pgx.CollectableRow) (domain.Room, error) {
	var r domain.Room
	err := row.Scan(&r.ID, &r.Name, &r.IsGroup, &r.Members, &r.CreatedAt)
	return r, err
}

func (t *pgTx) queryRoom(query string, id domain.RoomID) (domain.Room, error) {
	rows, err := t.tx.Query(t.ctx, query, id)
	if err != nil {
		return domain.Room{}, err
	}
	room, err := pgx.CollectExactlyOneRow(rows, scanRoom)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	return room, err
}

// GetRoom takes a share lock inside write transactions so that a message
// is never persisted against a membership that is being changed.
func (t *pgTx) GetRoom(id domain.RoomID) (domain.Room, error) {
	query := "SELECT " + roomColumns + " FROM rooms WHERE id = $1"
	if t.write {
		query += " FOR SHARE"
	}
	return t.queryRoom(query, id)
}

func (t *pgTx) LockRoom(id domain.RoomID) (domain.Room, error) {
	return t.queryRoom("SELECT "+roomColumns+" FROM rooms WHERE id = $1 FOR UPDATE", id)
}

func (t *pgTx) SaveRoom(room domain.Room) (domain.Room, error) {
	if room.ID == 0 {
		err := t.tx.QueryRow(t.ctx,
			"INSERT INTO rooms (name, is_group, members, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
			room.Name, room.IsGroup, room.Members, room.CreatedAt,
		).Scan(&room.ID)
		return room, err
	}
	_, err := t.tx.Exec(t.ctx,
		"UPDATE rooms SET name = $2, is_group = $3, members = $4 WHERE id = $1",
		room.ID, room.Name, room.IsGroup, room.Members,
	)
	return room, err
}

func (t *pgTx) DeleteRoom(id domain.RoomID) error {
	tag, err := t.tx.Exec(t.ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrRoomNotFound
	}
	return nil
}

func (t *pgTx) ListGroupRooms() ([]domain.Room, error) {
	rows, err := t.tx.Query(t.ctx, "SELECT "+roomColumns+" FROM rooms WHERE is_group ORDER BY id")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRoom)
}

func (t *pgTx) GetMember(identity string) (domain.Member, error) {
	var m domain.Member
	err := t.tx.QueryRow(t.ctx, "SELECT identity, name FROM members WHERE identity = $1", identity).
		Scan(&m.Identity, &m.Name)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return domain.Member{}, errors.ErrIdentityNotFound
	}
	return m, err
}

func (t *pgTx) SaveMember(member domain.Member) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO members (identity, name) VALUES ($1, $2)
		ON CONFLICT (identity)
		DO UPDATE SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE members.name END
	`, member.Identity, member.Name)
	return err
}

func (t *pgTx) IsParticipant(roomID domain.RoomID, identity string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(t.ctx,
		"SELECT EXISTS (SELECT 1 FROM participants WHERE room_id = $1 AND identity = $2)",
		roomID, identity,
	).Scan(&exists)
	return exists, err
}

func (t *pgTx) ListParticipants(roomID domain.RoomID) ([]domain.Participant, error) {
	rows, err := t.tx.Query(t.ctx,
		"SELECT room_id, identity, joined_at FROM participants WHERE room_id = $1 ORDER BY joined_at, identity",
		roomID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Participant, error) {
		var p domain.Participant
		err := row.Scan(&p.RoomID, &p.Identity, &p.JoinedAt)
		return p, err
	})
}

func (t *pgTx) ListRoomsOf(identity string) ([]domain.Room, error) {
	rows, err := t.tx.Query(t.ctx, `
		SELECT r.id, r.name, r.is_group, r.members, r.created_at
		FROM rooms r JOIN participants p ON p.room_id = r.id
		WHERE p.identity = $1
		ORDER BY r.id
	`, identity)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRoom)
}

func (t *pgTx) SaveParticipant(p domain.Participant) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO participants (room_id, identity, joined_at) VALUES ($1, $2, $3)
		ON CONFLICT (room_id, identity) DO NOTHING
	`, p.RoomID, p.Identity, p.JoinedAt)
	return err
}

func (t *pgTx) DeleteParticipant(roomID domain.RoomID, identity string) error {
	_, err := t.tx.Exec(t.ctx, "DELETE FROM participants WHERE room_id = $1 AND identity = $2", roomID, identity)
	return err
}

func (t *pgTx) SaveMessage(m domain.Message) (domain.Message, error) {
	var seq int64
	err := t.tx.QueryRow(t.ctx, `
		INSERT INTO messages (id, room_id, sender, body, lang, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`, m.ID, m.RoomID, m.Sender, m.Body, m.Lang, m.CreatedAt).Scan(&seq)
	if err != nil {
		return domain.Message{}, err
	}
	m.Seq = uint64(seq)
	return m, nil
}

func scanMessage(row pgx.CollectableRow) (domain.Message, error) {
	var (
		m   domain.Message
		seq int64
	)
	err := row.Scan(&m.ID, &m.RoomID, &seq, &m.Sender, &m.Body, &m.Lang, &m.CreatedAt)
	m.Seq = uint64(seq)
	return m, err
}

func (t *pgTx) ListMessages(roomID domain.RoomID) ([]domain.Message, error) {
	rows, err := t.tx.Query(t.ctx, `
		SELECT id, room_id, seq, sender, body, lang, created_at
		FROM messages WHERE room_id = $1
		ORDER BY created_at, seq
	`, roomID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMessage)
}

func (t *pgTx) GetMessage(id string) (domain.Message, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: message id %q", errors.ErrInvalidRequest, id)
	}
	rows, err := t.tx.Query(t.ctx,
		"SELECT id, room_id, seq, sender, body, lang, created_at FROM messages WHERE id = $1", parsed)
	if err != nil {
		return domain.Message{}, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMessage)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, fmt.Errorf("message %s: %w", id, errors.ErrMessageNotFound)
	}
	return m, err
}

// SaveReadStatuses upserts in one round trip; a read status never goes back to unread.
func (t *pgTx) SaveReadStatuses(statuses []domain.ReadStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range statuses {
		batch.Queue(`
			INSERT INTO read_statuses (message_id, room_id, identity, is_read) VALUES ($1, $2, $3, $4)
			ON CONFLICT (message_id, identity)
			DO UPDATE SET is_read = read_statuses.is_read OR EXCLUDED.is_read
		`, s.MessageID, s.RoomID, s.Identity, s.IsRead)
	}
	return t.tx.SendBatch(t.ctx, batch).Close()
}

func (t *pgTx) ListUnread(roomID domain.RoomID, identity string) ([]domain.ReadStatus, error) {
	rows, err := t.tx.Query(t.ctx, `
		SELECT message_id, room_id, identity, is_read
		FROM read_statuses
		WHERE room_id = $1 AND identity = $2 AND NOT is_read
	`, roomID, identity)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReadStatus, error) {
		var s domain.ReadStatus
		err := row.Scan(&s.MessageID, &s.RoomID, &s.Identity, &s.IsRead)
		return s, err
	})
}

func (t *pgTx) GetPrivateRoom(pair domain.PrivatePair) (domain.RoomID, error) {
	var id domain.RoomID
	err := t.tx.QueryRow(t.ctx,
		"SELECT room_id FROM private_pairs WHERE identity_low = $1 AND identity_high = $2",
		pair.Low, pair.High,
	).Scan(&id)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return 0, errors.ErrRoomNotFound
	}
	return id, err
}

// SavePrivateRoom relies on the primary key: the second claim of a pair
// fails with a unique violation, reported as a persistence conflict.
func (t *pgTx) SavePrivateRoom(pair domain.PrivatePair, roomID domain.RoomID) error {
	_, err := t.tx.Exec(t.ctx,
		"INSERT INTO private_pairs (identity_low, identity_high, room_id) VALUES ($1, $2, $3)",
		pair.Low, pair.High, roomID,
	)
	return mapPgError(err)
}
