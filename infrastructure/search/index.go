package search

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/domain/search"
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	fieldRoom      = "room"
	fieldSender    = "sender"
	fieldBody      = "body"
	fieldCreatedAt = "created_at"
)

// Index is the full-text index of the messages seen by this process.
// It is fed from the bridge, so every process ends up with the same documents.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// Open creates the index described by cfg, on disk or in memory.
func Open(cfg bluge.Config, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// OpenPath opens an on-disk index, or an in-memory one when path is empty.
func OpenPath(path string, log *slog.Logger) (*Index, error) {
	if path == "" {
		return Open(bluge.InMemoryOnlyConfig(), log)
	}
	return Open(bluge.DefaultConfig(path), log)
}

// Consume indexes broadcast messages; other events are ignored.
func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		return i.IndexMessage(evt.Message)
	default:
		return nil
	}
}

// IndexMessage is idempotent: the message id is the document id.
func (i *Index) IndexMessage(msg domain.OutboundMessage) error {
	doc := bluge.NewDocument(msg.MessageID)
	doc.AddField(bluge.NewKeywordField(fieldRoom, msg.RoomID.String()).StoreValue())
	doc.AddField(bluge.NewKeywordField(fieldSender, msg.SenderEmail).StoreValue())
	doc.AddField(bluge.NewTextField(fieldBody, msg.Message).StoreValue())
	doc.AddField(bluge.NewDateTimeField(fieldCreatedAt, msg.CreatedAt).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the best matching messages of roomID, best score first.
func (i *Index) Search(ctx context.Context, roomID domain.RoomID, q search.Query) ([]domain.SearchHit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(roomID.String()).SetField(fieldRoom))
	if q.Terms != "" {
		query.AddMust(bluge.NewMatchQuery(q.Terms).SetField(fieldBody))
	}
	if q.Sender != "" {
		query.AddMust(bluge.NewTermQuery(q.Sender).SetField(fieldSender))
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(q.Limit, query))
	if err != nil {
		return nil, err
	}

	var hits []domain.SearchHit
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := domain.SearchHit{RoomID: roomID, Score: match.Score}
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case fieldSender:
				hit.Sender = string(value)
			case fieldBody:
				hit.Body = string(value)
			case fieldCreatedAt:
				hit.CreatedAt, visitErr = bluge.DecodeDateTime(value)
			}
			return visitErr == nil
		})
		if err == nil {
			err = visitErr
		}
		if err != nil {
			break
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	i.log.Debug("Search done", "room_id", roomID, "terms", q.Terms, "hits", len(hits))
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
