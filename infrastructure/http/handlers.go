package http

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type roomResponse struct {
	RoomID    domain.RoomID `json:"roomId"`
	RoomName  string        `json:"roomName"`
	IsGroup   bool          `json:"isGroup"`
	Members   int           `json:"members"`
	CreatedAt time.Time     `json:"createdAt"`
}

type roomSummaryResponse struct {
	RoomID      domain.RoomID `json:"roomId"`
	RoomName    string        `json:"roomName"`
	IsGroup     bool          `json:"isGroup"`
	UnreadCount int           `json:"unreadCount"`
}

type historyResponse struct {
	MessageID   string    `json:"messageId"`
	SenderEmail string    `json:"senderEmail"`
	SenderName  string    `json:"senderName"`
	Message     string    `json:"message"`
	Lang        string    `json:"lang,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type searchHitResponse struct {
	MessageID   string    `json:"messageId"`
	SenderEmail string    `json:"senderEmail"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	Score       float64   `json:"score"`
}

type readResponse struct {
	RoomID       domain.RoomID `json:"roomId"`
	Acknowledged int           `json:"acknowledged"`
}

// Handlers exposes the room and message operations over HTTP.
// Every handler delegates to one core operation and maps its error.
type Handlers struct {
	log      *slog.Logger
	rooms    contract.IRoomService
	messages contract.IMessageService
}

func NewHandlers(log *slog.Logger, rooms contract.IRoomService, messages contract.IMessageService) *Handlers {
	return &Handlers{log: log, rooms: rooms, messages: messages}
}

func (h *Handlers) CreateGroupRoom(c *gin.Context) {
	roomID, err := h.rooms.CreateGroupRoom(c.Request.Context(), c.Query("roomName"), identityOf(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"roomId": roomID})
}

func (h *Handlers) ListGroupRooms(c *gin.Context) {
	rooms, err := h.rooms.ListGroupRooms(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(rooms, func(r domain.Room, _ int) roomResponse {
		return toRoomResponse(r)
	}))
}

func (h *Handlers) JoinGroupRoom(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}
	if err := h.rooms.JoinGroupRoom(c.Request.Context(), roomID, identityOf(c).Email); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID})
}

func (h *Handlers) LeaveGroupRoom(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}
	if err := h.rooms.LeaveGroupRoom(c.Request.Context(), roomID, identityOf(c).Email); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) GetOrCreatePrivateRoom(c *gin.Context) {
	other := strings.ToLower(strings.TrimSpace(c.Query("otherMemberId")))
	if other == "" {
		h.fail(c, fmt.Errorf("%w: otherMemberId is required", errors.ErrInvalidRequest))
		return
	}
	roomID, err := h.rooms.GetOrCreatePrivateRoom(c.Request.Context(), identityOf(c).Email, other)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID})
}

func (h *Handlers) ListMyRooms(c *gin.Context) {
	summaries, err := h.rooms.ListMyRooms(c.Request.Context(), identityOf(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(summaries, func(s domain.RoomSummary, _ int) roomSummaryResponse {
		return roomSummaryResponse{
			RoomID:      s.Room.ID,
			RoomName:    s.Room.Name,
			IsGroup:     s.Room.IsGroup,
			UnreadCount: s.UnreadCount,
		}
	}))
}

func (h *Handlers) GetHistory(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}
	entries, err := h.messages.GetHistory(c.Request.Context(), roomID, identityOf(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(entries, func(e domain.HistoryEntry, _ int) historyResponse {
		return historyResponse{
			MessageID:   e.Message.ID.String(),
			SenderEmail: e.Message.Sender,
			SenderName:  e.Sender.DisplayName(),
			Message:     e.Message.Body,
			Lang:        e.Message.Lang,
			CreatedAt:   e.Message.CreatedAt,
		}
	}))
}

func (h *Handlers) AcknowledgeRead(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}
	count, err := h.messages.AcknowledgeRead(c.Request.Context(), roomID, identityOf(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, readResponse{RoomID: roomID, Acknowledged: count})
}

func (h *Handlers) Search(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}
	hits, err := h.messages.Search(c.Request.Context(), roomID, identityOf(c).Email, c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(hits, func(hit domain.SearchHit, _ int) searchHitResponse {
		return searchHitResponse{
			MessageID:   hit.MessageID,
			SenderEmail: hit.Sender,
			Message:     hit.Body,
			CreatedAt:   hit.CreatedAt,
			Score:       hit.Score,
		}
	}))
}

func (h *Handlers) roomID(c *gin.Context) (domain.RoomID, bool) {
	roomID, err := domain.ParseRoomID(c.Param("roomId"))
	if err != nil {
		h.fail(c, err)
		return 0, false
	}
	return roomID, true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	abortWithError(c, err)
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.MapToHTTPStatus(err), errorResponse{Code: errors.Code(err), Message: err.Error()})
}

func toRoomResponse(r domain.Room) roomResponse {
	return roomResponse{
		RoomID:    r.ID,
		RoomName:  r.Name,
		IsGroup:   r.IsGroup,
		Members:   r.Members,
		CreatedAt: r.CreatedAt,
	}
}
