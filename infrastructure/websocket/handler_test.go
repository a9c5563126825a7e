package websocket

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/runtime"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const alice = "alice@x.com"

type fixture struct {
	registry *runtime.ConnectionRegistry
	rooms    *mocks.MockIRoomService
	messages *mocks.MockIMessageService
	server   *httptest.Server
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	ctrl := gomock.NewController(t)
	f := &fixture{
		registry: runtime.NewConnectionRegistry(log, time.Second),
		rooms:    mocks.NewMockIRoomService(ctrl),
		messages: mocks.NewMockIMessageService(ctrl),
	}
	handler := NewHandler(log, f.registry, f.rooms, f.messages, opts)
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("anonymous") != "" {
			handler.ServeHTTP(w, r)
			return
		}
		handler.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{Email: alice})))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) dial(t *testing.T) *gorilla.Conn {
	t.Helper()
	client, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.Eventually(t, func() bool { return f.registry.Len() == 1 }, time.Second, 5*time.Millisecond)
	return client
}

func send(t *testing.T, client *gorilla.Conn, frame string) {
	t.Helper()
	require.NoError(t, client.WriteMessage(gorilla.TextMessage, []byte(frame)))
}

func readReply(t *testing.T, client *gorilla.Conn) domain.ReplyFrame {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)
	var reply domain.ReplyFrame
	require.NoError(t, json.Unmarshal(raw, &reply))
	return reply
}

func TestHandler_SubscribeThenReceiveRoomBroadcast(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, DefaultOptions())
	f.rooms.EXPECT().IsRoomParticipant(gomock.Any(), domain.RoomID(7), alice).Return(true, nil)
	client := f.dial(t)

	// Given a subscription to room 7
	send(t, client, `{"type":"SUBSCRIBE","roomId":7}`)
	reply := readReply(t, client)
	req.Equal(domain.FrameAck, reply.Type)
	req.Equal(domain.RoomID(7), reply.RoomID)

	// When room 7 and room 8 broadcast
	req.Equal(0, f.registry.BroadcastRoom(context.Background(), 8, []byte(`{"roomId":8}`)))
	req.Equal(1, f.registry.BroadcastRoom(context.Background(), 7, []byte(`{"roomId":7}`)))

	// Then only room 7's payload arrives, verbatim
	req.NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, raw, err := client.ReadMessage()
	req.NoError(err)
	req.JSONEq(`{"roomId":7}`, string(raw))
}

func TestHandler_SubscribeRequiresParticipation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, DefaultOptions())
	f.rooms.EXPECT().IsRoomParticipant(gomock.Any(), domain.RoomID(3), alice).Return(false, nil)
	client := f.dial(t)

	send(t, client, `{"type":"SUBSCRIBE","roomId":3}`)

	reply := readReply(t, client)
	req.Equal(domain.FrameError, reply.Type)
	req.Equal("NOT_A_PARTICIPANT", reply.Code)
	req.Equal(0, f.registry.BroadcastRoom(context.Background(), 3, []byte("{}")))
}

func TestHandler_SendSubmitsAsConnectionIdentity(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, DefaultOptions())
	saved := domain.Message{ID: uuid.New(), RoomID: 5, Sender: alice, Body: "hi"}
	f.messages.EXPECT().SubmitMessage(gomock.Any(), domain.RoomID(5), alice, "hi").Return(saved, nil)
	client := f.dial(t)

	send(t, client, `{"type":"SEND","roomId":5,"message":"hi","senderEmail":"Alice@X.com"}`)

	reply := readReply(t, client)
	req.Equal(domain.FrameAck, reply.Type)
	req.Equal(saved.ID.String(), reply.MessageID)
}

func TestHandler_SendReportsBridgeFailureWithMessageID(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, DefaultOptions())
	saved := domain.Message{ID: uuid.New(), RoomID: 5, Sender: alice, Body: "hi"}
	f.messages.EXPECT().SubmitMessage(gomock.Any(), domain.RoomID(5), alice, "hi").Return(saved, errors.ErrBridgeUnavailable)
	client := f.dial(t)

	send(t, client, `{"type":"SEND","roomId":5,"message":"hi"}`)

	reply := readReply(t, client)
	req.Equal(domain.FrameError, reply.Type)
	req.Equal("BRIDGE_UNAVAILABLE", reply.Code)
	req.Equal(saved.ID.String(), reply.MessageID)
}

func TestHandler_RejectsBadFrames(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	client := f.dial(t)

	frames := []string{
		`not json`,
		`{"type":"DANCE","roomId":1}`,
		`{"type":"SEND","message":"no room"}`,
		`{"type":"SEND","roomId":1,"message":"hi","senderEmail":"bob@x.com"}`,
	}
	for _, frame := range frames {
		send(t, client, frame)
		reply := readReply(t, client)
		require.Equal(t, domain.FrameError, reply.Type, frame)
		require.Equal(t, "INVALID_REQUEST", reply.Code, frame)
	}
}

func TestHandler_RateLimitsInboundFrames(t *testing.T) {
	req := require.New(t)
	opts := DefaultOptions()
	opts.FramesPerSec, opts.FrameBurst = 0.001, 1
	f := newFixture(t, opts)
	f.rooms.EXPECT().IsRoomParticipant(gomock.Any(), domain.RoomID(1), alice).Return(true, nil)
	client := f.dial(t)

	send(t, client, `{"type":"SUBSCRIBE","roomId":1}`)
	req.Equal(domain.FrameAck, readReply(t, client).Type)

	send(t, client, `{"type":"SUBSCRIBE","roomId":1}`)
	reply := readReply(t, client)
	req.Equal(domain.FrameError, reply.Type)
	req.Equal("RATE_LIMITED", reply.Code)
}

func TestHandler_CloseUnregisters(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	client := f.dial(t)

	require.NoError(t, client.Close())

	require.Eventually(t, func() bool { return f.registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RequiresIdentity(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, DefaultOptions())

	resp, err := http.Get(f.server.URL + "?anonymous=1")

	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	req.Equal(0, f.registry.Len())
}
