package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"room not found", ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"identity not found", ErrIdentityNotFound, http.StatusNotFound, "IDENTITY_NOT_FOUND"},
		{"message not found", ErrMessageNotFound, http.StatusNotFound, "MESSAGE_NOT_FOUND"},
		{"not a group room", ErrNotAGroupRoom, http.StatusBadRequest, "NOT_A_GROUP_ROOM"},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"not a participant", ErrNotAParticipant, http.StatusForbidden, "NOT_A_PARTICIPANT"},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"conflict", ErrPersistenceConflict, http.StatusConflict, "PERSISTENCE_CONFLICT"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"bridge unavailable", ErrBridgeUnavailable, http.StatusServiceUnavailable, "BRIDGE_UNAVAILABLE"},
		{"wrapped", fmt.Errorf("join room 4: %w", ErrNotAParticipant), http.StatusForbidden, "NOT_A_PARTICIPANT"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.status, MapToHTTPStatus(tt.err))
			req.Equal(tt.code, Code(tt.err))
		})
	}
}

func TestMapToHTTPStatus_Nil(t *testing.T) {
	require.Equal(t, http.StatusOK, MapToHTTPStatus(nil))
}
