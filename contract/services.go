//go:generate go run go.uber.org/mock/mockgen -source=services.go -destination=../mocks/mock_services.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

type IMessageService interface {
	SubmitMessage(ctx context.Context, roomID domain.RoomID, sender, body string) (domain.Message, error)
	GetHistory(ctx context.Context, roomID domain.RoomID, requester string) ([]domain.HistoryEntry, error)
	AcknowledgeRead(ctx context.Context, roomID domain.RoomID, requester string) (int, error)
	UnreadCount(ctx context.Context, roomID domain.RoomID, identity string) (int, error)
	Search(ctx context.Context, roomID domain.RoomID, requester, query string) ([]domain.SearchHit, error)
}

type IRoomService interface {
	CreateGroupRoom(ctx context.Context, name, creator string) (domain.RoomID, error)
	ListGroupRooms(ctx context.Context) ([]domain.Room, error)
	JoinGroupRoom(ctx context.Context, roomID domain.RoomID, identity string) error
	LeaveGroupRoom(ctx context.Context, roomID domain.RoomID, identity string) error
	GetOrCreatePrivateRoom(ctx context.Context, a, b string) (domain.RoomID, error)
	ListMyRooms(ctx context.Context, identity string) ([]domain.RoomSummary, error)
	IsRoomParticipant(ctx context.Context, roomID domain.RoomID, identity string) (bool, error)
}

type IMemberService interface {
	EnsureMember(ctx context.Context, member domain.Member) error
}
