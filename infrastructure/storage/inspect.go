package storage

import (
	"fmt"
	"strings"
	"time"
)

// Record is the readable form of one Badger entry, used by debugging tools.
type Record struct {
	Kind   string
	Entity string
	At     time.Time
	Detail string
}

// DescribeRecord decodes a raw entry according to its key prefix.
// Undecodable values are reported in Detail instead of failing.
func DescribeRecord(key string, value []byte) Record {
	kind, rest, _ := strings.Cut(key, ":")
	entity := strings.TrimSuffix(strings.ReplaceAll(rest, identityTerminator, "/"), "/")
	record := Record{Kind: strings.ToUpper(kind), Entity: entity, Detail: fmt.Sprintf("%d bytes", len(value))}

	var err error
	switch kind {
	case "room":
		room, e := decodeRoom(value)
		err = e
		record.At = room.CreatedAt
		record.Detail = fmt.Sprintf("%q group=%t members=%d", room.Name, room.IsGroup, room.Members)
	case "member":
		member, e := decodeMember(value)
		err = e
		record.Detail = member.DisplayName()
	case "part":
		p, e := decodeParticipant(value)
		err = e
		record.At = p.JoinedAt
		record.Detail = fmt.Sprintf("room=%d identity=%s", p.RoomID, p.Identity)
	case "msg":
		m, e := decodeMessage(value)
		err = e
		record.Entity = m.ID.String()
		record.At = m.CreatedAt
		record.Detail = fmt.Sprintf("room=%d seq=%d %s: %s", m.RoomID, m.Seq, m.Sender, m.Body)
	case "rs":
		s, e := decodeReadStatus(value)
		err = e
		record.Detail = fmt.Sprintf("room=%d identity=%s read=%t", s.RoomID, s.Identity, s.IsRead)
	case "msgid", "pair":
		record.Detail = "-> " + string(value)
	case "ident":
		record.Detail = "index"
	}
	if err != nil {
		record.Detail = "undecodable: " + err.Error()
	}
	return record
}
