package http

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	secret = "test-secret"
	alice  = "alice@x.com"
)

type fixture struct {
	router   http.Handler
	members  *mocks.MockIMemberService
	rooms    *mocks.MockIRoomService
	messages *mocks.MockIMessageService
	token    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	f := &fixture{
		members:  mocks.NewMockIMemberService(ctrl),
		rooms:    mocks.NewMockIRoomService(ctrl),
		messages: mocks.NewMockIMessageService(ctrl),
	}
	f.router = NewRouter(log, auth.NewResolver(secret), f.members, f.rooms, f.messages, nil)
	token, err := auth.GenerateToken([]byte(secret), alice, "Alice", nil, time.Hour)
	require.NoError(t, err)
	f.token = token
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, nil)
	request.Header.Set("Authorization", "Bearer "+f.token)
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func (f *fixture) expectMember() {
	f.members.EXPECT().EnsureMember(gomock.Any(), domain.Member{Identity: alice, Name: "Alice"}).Return(nil)
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/chat/my/rooms", nil))

	req.Equal(http.StatusUnauthorized, recorder.Code)
	var body errorResponse
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal("INVALID_TOKEN", body.Code)
}

func TestRouter_CreateGroupRoom(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given an authenticated caller
	f.expectMember()
	f.rooms.EXPECT().CreateGroupRoom(gomock.Any(), "Team", alice).Return(domain.RoomID(7), nil)

	// When creating a group room
	recorder := f.do(http.MethodPost, "/chat/room/group/create?roomName=Team")

	// Then the new room id is returned
	req.Equal(http.StatusCreated, recorder.Code)
	req.JSONEq(`{"roomId":7}`, recorder.Body.String())
}

func TestRouter_ListMyRooms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectMember()
	f.rooms.EXPECT().ListMyRooms(gomock.Any(), alice).Return([]domain.RoomSummary{
		{Room: domain.Room{ID: 1, Name: "Team", IsGroup: true}, UnreadCount: 3},
		{Room: domain.Room{ID: 2, Name: "Alice-Bob"}, UnreadCount: 0},
	}, nil)

	recorder := f.do(http.MethodGet, "/chat/my/rooms")

	req.Equal(http.StatusOK, recorder.Code)
	req.JSONEq(`[
		{"roomId":1,"roomName":"Team","isGroup":true,"unreadCount":3},
		{"roomId":2,"roomName":"Alice-Bob","isGroup":false,"unreadCount":0}
	]`, recorder.Body.String())
}

func TestRouter_GetHistory(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	f.expectMember()
	f.messages.EXPECT().GetHistory(gomock.Any(), domain.RoomID(4), alice).Return([]domain.HistoryEntry{{
		Message: domain.Message{ID: id, RoomID: 4, Sender: "bob@x.com", Body: "hello", Lang: "eng", CreatedAt: at},
		Sender:  domain.Member{Identity: "bob@x.com", Name: "Bob"},
	}}, nil)

	recorder := f.do(http.MethodGet, "/chat/history/4")

	req.Equal(http.StatusOK, recorder.Code)
	var body []historyResponse
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal([]historyResponse{{
		MessageID:   id.String(),
		SenderEmail: "bob@x.com",
		SenderName:  "Bob",
		Message:     "hello",
		Lang:        "eng",
		CreatedAt:   at,
	}}, body)
}

func TestRouter_AcknowledgeRead(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectMember()
	f.messages.EXPECT().AcknowledgeRead(gomock.Any(), domain.RoomID(4), alice).Return(2, nil)

	recorder := f.do(http.MethodPost, "/chat/room/4/read")

	req.Equal(http.StatusOK, recorder.Code)
	req.JSONEq(`{"roomId":4,"acknowledged":2}`, recorder.Body.String())
}

func TestRouter_LeaveAndPrivate(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.members.EXPECT().EnsureMember(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.rooms.EXPECT().LeaveGroupRoom(gomock.Any(), domain.RoomID(3), alice).Return(nil)
	f.rooms.EXPECT().GetOrCreatePrivateRoom(gomock.Any(), alice, "bob@x.com").Return(domain.RoomID(9), nil)

	req.Equal(http.StatusNoContent, f.do(http.MethodDelete, "/chat/room/group/3/leave").Code)

	recorder := f.do(http.MethodPost, "/chat/room/private/create?otherMemberId=Bob@x.com")
	req.Equal(http.StatusOK, recorder.Code)
	req.JSONEq(`{"roomId":9}`, recorder.Body.String())
}

func TestRouter_MapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"room not found", errors.ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"not a group room", errors.ErrNotAGroupRoom, http.StatusBadRequest, "NOT_A_GROUP_ROOM"},
		{"not a participant", errors.ErrNotAParticipant, http.StatusForbidden, "NOT_A_PARTICIPANT"},
		{"conflict", fmt.Errorf("join: %w", errors.ErrPersistenceConflict), http.StatusConflict, "PERSISTENCE_CONFLICT"},
		{"unexpected", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)
			f.expectMember()
			f.rooms.EXPECT().JoinGroupRoom(gomock.Any(), domain.RoomID(5), alice).Return(tt.err)

			recorder := f.do(http.MethodPost, "/chat/room/group/5/join")

			req.Equal(tt.status, recorder.Code)
			var body errorResponse
			req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
			req.Equal(tt.code, body.Code)
		})
	}
}

func TestRouter_RejectsBadRoomID(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectMember()

	recorder := f.do(http.MethodGet, "/chat/history/abc")

	req.Equal(http.StatusBadRequest, recorder.Code)
}

func TestRouter_Search(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectMember()
	f.messages.EXPECT().Search(gomock.Any(), domain.RoomID(2), alice, "deploy --from bob@x.com").
		Return([]domain.SearchHit{{MessageID: "m1", RoomID: 2, Sender: "bob@x.com", Body: "deploy done", Score: 1.5}}, nil)

	recorder := f.do(http.MethodGet, "/chat/room/2/search?q=deploy+--from+bob@x.com")

	req.Equal(http.StatusOK, recorder.Code)
	var body []searchHitResponse
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Len(body, 1)
	req.Equal("deploy done", body[0].Message)
}
