// Package domain contains core concepts of the chat system.
// This file defines Room entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-relay/errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RoomID int64

func (id RoomID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseRoomID reads a room identifier coming from a path or a frame.
func ParseRoomID(raw string) (RoomID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: room id %q", errors.ErrInvalidRequest, raw)
	}
	return RoomID(id), nil
}

// Room is either a group room (one or more participants, joinable)
// or a private room (exactly two participants, fixed).
// Members is rewritten on every membership change and acts as the
// membership version observed by message submission.
type Room struct {
	ID        RoomID
	Name      string
	IsGroup   bool
	Members   int
	CreatedAt time.Time
}

func NewGroupRoom(name string, at time.Time) Room {
	return Room{
		Name:      strings.TrimSpace(name),
		IsGroup:   true,
		CreatedAt: at,
	}
}

// NewPrivateRoom names the room after both members, e.g. "Alice-Bob".
func NewPrivateRoom(a, b Member, at time.Time) (Room, error) {
	if a.Identity == b.Identity {
		return Room{}, fmt.Errorf("%w: private room needs two distinct identities", errors.ErrInvalidRequest)
	}
	return Room{
		Name:      a.DisplayName() + "-" + b.DisplayName(),
		IsGroup:   false,
		CreatedAt: at,
	}, nil
}

// Joined returns the room with one more participant.
func (r Room) Joined() Room {
	r.Members++
	return r
}

// Left returns the room with one participant less.
// A group room reaching zero must be deleted by the caller.
func (r Room) Left() Room {
	if r.Members > 0 {
		r.Members--
	}
	return r
}

func (r Room) IsEmpty() bool {
	return r.Members == 0
}

// PrivatePair is the unordered identity pair owning a private room.
type PrivatePair struct {
	Low  string
	High string
}

func NewPrivatePair(a, b string) PrivatePair {
	if a > b {
		a, b = b, a
	}
	return PrivatePair{Low: a, High: b}
}

// String renders the pair for logs. Storage keys are built by each store.
func (p PrivatePair) String() string {
	return p.Low + "|" + p.High
}
