// Package client talks to a chat node over its HTTP control surface and websocket.
package client

import (
	"chat-relay/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gorilla "github.com/gorilla/websocket"
)

// APIError is a non-2xx answer of the control surface.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

type Room struct {
	RoomID      domain.RoomID `json:"roomId"`
	RoomName    string        `json:"roomName"`
	IsGroup     bool          `json:"isGroup"`
	UnreadCount int           `json:"unreadCount"`
}

type HistoryItem struct {
	MessageID   string    `json:"messageId"`
	SenderEmail string    `json:"senderEmail"`
	SenderName  string    `json:"senderName"`
	Message     string    `json:"message"`
	Lang        string    `json:"lang"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Frame is any frame pushed by the node: a chat message, an ACK or an ERROR.
type Frame struct {
	Type        domain.FrameType `json:"type"`
	RoomID      domain.RoomID    `json:"roomId"`
	MessageID   string           `json:"messageId"`
	SenderEmail string           `json:"senderEmail"`
	SenderName  string           `json:"senderName"`
	Message     string           `json:"message"`
	Code        string           `json:"code"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client of the node at baseURL authenticated with token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateGroupRoom(ctx context.Context, name string) (domain.RoomID, error) {
	var out struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/room/group/create?roomName="+url.QueryEscape(name), &out)
	return out.RoomID, err
}

func (c *Client) JoinGroupRoom(ctx context.Context, roomID domain.RoomID) error {
	return c.do(ctx, http.MethodPost, "/chat/room/group/"+roomID.String()+"/join", nil)
}

func (c *Client) LeaveGroupRoom(ctx context.Context, roomID domain.RoomID) error {
	return c.do(ctx, http.MethodDelete, "/chat/room/group/"+roomID.String()+"/leave", nil)
}

func (c *Client) PrivateRoom(ctx context.Context, other string) (domain.RoomID, error) {
	var out struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/room/private/create?otherMemberId="+url.QueryEscape(other), &out)
	return out.RoomID, err
}

func (c *Client) MyRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := c.do(ctx, http.MethodGet, "/chat/my/rooms", &rooms)
	return rooms, err
}

func (c *Client) History(ctx context.Context, roomID domain.RoomID) ([]HistoryItem, error) {
	var items []HistoryItem
	err := c.do(ctx, http.MethodGet, "/chat/history/"+roomID.String(), &items)
	return items, err
}

func (c *Client) Read(ctx context.Context, roomID domain.RoomID) (int, error) {
	var out struct {
		Acknowledged int `json:"acknowledged"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/room/"+roomID.String()+"/read", &out)
	return out.Acknowledged, err
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Stream is one websocket connection to the node.
// Next must be called from a single goroutine.
type Stream struct {
	ws *gorilla.Conn
}

// Connect opens the websocket of the node. Frames are read with Next.
func (c *Client) Connect(ctx context.Context) (*Stream, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/connect"
	header := http.Header{"Authorization": []string{"Bearer " + c.token}}
	ws, _, err := gorilla.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	return &Stream{ws: ws}, nil
}

func (s *Stream) Subscribe(roomID domain.RoomID) error {
	return s.ws.WriteJSON(domain.InboundFrame{Type: domain.FrameSubscribe, RoomID: roomID})
}

func (s *Stream) Unsubscribe(roomID domain.RoomID) error {
	return s.ws.WriteJSON(domain.InboundFrame{Type: domain.FrameUnsubscribe, RoomID: roomID})
}

func (s *Stream) Send(roomID domain.RoomID, message string) error {
	return s.ws.WriteJSON(domain.InboundFrame{Type: domain.FrameSend, RoomID: roomID, Message: message})
}

// Next blocks until a frame arrives or timeout elapses; zero waits forever.
// A timed out stream is unusable and must be closed.
func (s *Stream) Next(timeout time.Duration) (Frame, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := s.ws.SetReadDeadline(deadline); err != nil {
		return Frame{}, err
	}
	var frame Frame
	err := s.ws.ReadJSON(&frame)
	return frame, err
}

// NextOf skips frames until one of type t arrives.
func (s *Stream) NextOf(t domain.FrameType, timeout time.Duration) (Frame, error) {
	deadline := time.Now().Add(timeout)
	for {
		frame, err := s.Next(time.Until(deadline))
		if err != nil {
			return Frame{}, err
		}
		if frame.Type == t {
			return frame, nil
		}
	}
}

func (s *Stream) Close() error {
	_ = s.ws.WriteControl(gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return s.ws.Close()
}
