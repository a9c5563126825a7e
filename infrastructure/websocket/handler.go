package websocket

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gorilla "github.com/gorilla/websocket"
)

// Handler upgrades authenticated requests and serves the chat frames of each connection.
// The caller identity must already be in the request context.
type Handler struct {
	log          *slog.Logger
	registry     contract.IConnectionRegistry
	rooms        contract.IRoomService
	messages     contract.IMessageService
	upgrader     gorilla.Upgrader
	opts         Options
	frameTimeout time.Duration
}

// NewHandler serves /connect. Connections are registered for the lifetime of their socket.
func NewHandler(
	log *slog.Logger,
	registry contract.IConnectionRegistry,
	rooms contract.IRoomService,
	messages contract.IMessageService,
	opts Options,
) *Handler {
	return &Handler{
		log:      log,
		registry: registry,
		rooms:    rooms,
		messages: messages,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		opts:         opts,
		frameTimeout: 10 * time.Second,
	}
}

// ServeHTTP blocks until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, errors.ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		h.log.Debug("Upgrade failed", "identity", identity.Email, "error", err)
		return
	}

	conn := NewConnection(identity.Email, ws, h.opts, h.log)
	h.registry.Register(conn)
	defer func() {
		h.registry.Unregister(conn)
		conn.Close(gorilla.CloseNormalClosure, "session closed")
	}()
	go conn.writePump()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	h.readPump(ctx, conn)
}

func (h *Handler) readPump(ctx context.Context, conn *Connection) {
	conn.ws.SetReadLimit(h.opts.MaxFrameSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		messageType, raw, err := conn.ws.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway, gorilla.CloseNoStatusReceived) {
				conn.log.Debug("Connection lost", "error", err)
			}
			return
		}
		if messageType != gorilla.TextMessage {
			h.reply(ctx, conn, domain.NewErrorFrame(0, fmt.Errorf("%w: text frames only", errors.ErrInvalidRequest)))
			continue
		}
		if !conn.Allow() {
			h.reply(ctx, conn, domain.NewErrorFrame(0, errors.ErrRateLimited))
			continue
		}
		h.reply(ctx, conn, h.handleFrame(ctx, conn, raw))
	}
}

// handleFrame runs one inbound frame and returns the reply for its sender only.
func (h *Handler) handleFrame(ctx context.Context, conn *Connection, raw []byte) domain.ReplyFrame {
	frame, err := domain.DecodeInboundFrame(raw)
	if err != nil {
		return domain.NewErrorFrame(0, err)
	}
	ctx, cancel := context.WithTimeout(ctx, h.frameTimeout)
	defer cancel()

	switch frame.Type {
	case domain.FrameSubscribe:
		ok, err := h.rooms.IsRoomParticipant(ctx, frame.RoomID, conn.Identity())
		if err != nil {
			return domain.NewErrorFrame(frame.RoomID, err)
		}
		if !ok {
			return domain.NewErrorFrame(frame.RoomID, fmt.Errorf("%w: room %d", errors.ErrNotAParticipant, frame.RoomID))
		}
		conn.Subscribe(frame.RoomID)
		return domain.ReplyFrame{Type: domain.FrameAck, RoomID: frame.RoomID}

	case domain.FrameUnsubscribe:
		conn.Unsubscribe(frame.RoomID)
		return domain.ReplyFrame{Type: domain.FrameAck, RoomID: frame.RoomID}

	default:
		if frame.SenderEmail != "" && !strings.EqualFold(frame.SenderEmail, conn.Identity()) {
			return domain.NewErrorFrame(frame.RoomID, fmt.Errorf("%w: sender does not match the connection", errors.ErrInvalidRequest))
		}
		saved, err := h.messages.SubmitMessage(ctx, frame.RoomID, conn.Identity(), frame.Message)
		if err != nil {
			reply := domain.NewErrorFrame(frame.RoomID, err)
			if goerrors.Is(err, errors.ErrBridgeUnavailable) {
				reply.MessageID = saved.ID.String()
			}
			return reply
		}
		return domain.ReplyFrame{Type: domain.FrameAck, RoomID: frame.RoomID, MessageID: saved.ID.String()}
	}
}

func (h *Handler) reply(ctx context.Context, conn *Connection, frame domain.ReplyFrame) {
	if frame.Type == domain.FrameError {
		conn.log.Debug("Frame rejected", "room_id", frame.RoomID, "code", frame.Code)
	}
	if err := conn.Send(ctx, frame.Encode()); err != nil {
		conn.log.Debug("Reply dropped", "error", err)
	}
}
