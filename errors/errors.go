package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrRoomNotFound        = fmt.Errorf("room not found")
	ErrMessageNotFound     = fmt.Errorf("message not found")
	ErrIdentityNotFound    = fmt.Errorf("identity not found")
	ErrNotAGroupRoom       = fmt.Errorf("not a group room")
	ErrNotAParticipant     = fmt.Errorf("not a participant of the room")
	ErrBridgeUnavailable   = fmt.Errorf("broadcast bridge unavailable")
	ErrPersistenceConflict = fmt.Errorf("persistence conflict")
	ErrInvalidRequest      = fmt.Errorf("invalid request")
	ErrInvalidToken        = fmt.Errorf("invalid or expired token")
	ErrConnectionClosed    = fmt.Errorf("connection closed")
	ErrSendBufferFull      = fmt.Errorf("connection send buffer full")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
	ErrRateLimited         = fmt.Errorf("too many frames")
)

// MapToHTTPStatus translates a core error into the status code returned by the control surface.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.Is(err, ErrRoomNotFound), goerrors.Is(err, ErrIdentityNotFound), goerrors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, ErrNotAGroupRoom), goerrors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case goerrors.Is(err, ErrNotAParticipant):
		return http.StatusForbidden
	case goerrors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case goerrors.Is(err, ErrPersistenceConflict):
		return http.StatusConflict
	case goerrors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case goerrors.Is(err, ErrBridgeUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the short machine readable name sent to websocket clients in ERROR frames.
func Code(err error) string {
	switch {
	case goerrors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case goerrors.Is(err, ErrIdentityNotFound):
		return "IDENTITY_NOT_FOUND"
	case goerrors.Is(err, ErrMessageNotFound):
		return "MESSAGE_NOT_FOUND"
	case goerrors.Is(err, ErrNotAGroupRoom):
		return "NOT_A_GROUP_ROOM"
	case goerrors.Is(err, ErrNotAParticipant):
		return "NOT_A_PARTICIPANT"
	case goerrors.Is(err, ErrBridgeUnavailable):
		return "BRIDGE_UNAVAILABLE"
	case goerrors.Is(err, ErrPersistenceConflict):
		return "PERSISTENCE_CONFLICT"
	case goerrors.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	case goerrors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case goerrors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
