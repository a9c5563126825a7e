package storage

import (
	"chat-relay/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Records are stored in protobuf wire format so that fields can be added
// without rewriting existing values. Field numbers must never be reused.

const (
	roomFieldID protowire.Number = iota + 1
	roomFieldName
	roomFieldIsGroup
	roomFieldMembers
	roomFieldCreatedAt
)

const (
	memberFieldIdentity protowire.Number = iota + 1
	memberFieldName
)

const (
	participantFieldRoomID protowire.Number = iota + 1
	participantFieldIdentity
	participantFieldJoinedAt
)

const (
	messageFieldID protowire.Number = iota + 1
	messageFieldRoomID
	messageFieldSender
	messageFieldBody
	messageFieldLang
	messageFieldCreatedAt
	messageFieldSeq
)

const (
	readStatusFieldMessageID protowire.Number = iota + 1
	readStatusFieldRoomID
	readStatusFieldIdentity
	readStatusFieldIsRead
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendTime(b []byte, num protowire.Number, t time.Time) ([]byte, error) {
	raw, err := proto.Marshal(timestamppb.New(t))
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, raw), nil
}

func decodeTime(raw []byte) (time.Time, error) {
	var ts timestamppb.Timestamp
	if err := proto.Unmarshal(raw, &ts); err != nil {
		return time.Time{}, err
	}
	return ts.AsTime(), nil
}

// field is one decoded wire field; only the member matching its type is set.
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

func decodeFields(b []byte, visit func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num}
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(m))
			}
			f.varint, n = v, m
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(m))
			}
			f.bytes, n = v, m
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
			continue
		}
		b = b[n:]
		if err := visit(f); err != nil {
			return err
		}
	}
	return nil
}

func encodeRoom(r domain.Room) ([]byte, error) {
	var b []byte
	b = appendVarint(b, roomFieldID, uint64(r.ID))
	b = appendString(b, roomFieldName, r.Name)
	b = appendBool(b, roomFieldIsGroup, r.IsGroup)
	b = appendVarint(b, roomFieldMembers, uint64(r.Members))
	return appendTime(b, roomFieldCreatedAt, r.CreatedAt)
}

func decodeRoom(b []byte) (domain.Room, error) {
	var r domain.Room
	err := decodeFields(b, func(f field) (err error) {
		switch f.num {
		case roomFieldID:
			r.ID = domain.RoomID(f.varint)
		case roomFieldName:
			r.Name = string(f.bytes)
		case roomFieldIsGroup:
			r.IsGroup = protowire.DecodeBool(f.varint)
		case roomFieldMembers:
			r.Members = int(f.varint)
		case roomFieldCreatedAt:
			r.CreatedAt, err = decodeTime(f.bytes)
		}
		return err
	})
	return r, err
}

func encodeMember(m domain.Member) []byte {
	var b []byte
	b = appendString(b, memberFieldIdentity, m.Identity)
	return appendString(b, memberFieldName, m.Name)
}

func decodeMember(b []byte) (domain.Member, error) {
	var m domain.Member
	err := decodeFields(b, func(f field) error {
		switch f.num {
		case memberFieldIdentity:
			m.Identity = string(f.bytes)
		case memberFieldName:
			m.Name = string(f.bytes)
		}
		return nil
	})
	return m, err
}

func encodeParticipant(p domain.Participant) ([]byte, error) {
	var b []byte
	b = appendVarint(b, participantFieldRoomID, uint64(p.RoomID))
	b = appendString(b, participantFieldIdentity, p.Identity)
	return appendTime(b, participantFieldJoinedAt, p.JoinedAt)
}

func decodeParticipant(b []byte) (domain.Participant, error) {
	var p domain.Participant
	err := decodeFields(b, func(f field) (err error) {
		switch f.num {
		case participantFieldRoomID:
			p.RoomID = domain.RoomID(f.varint)
		case participantFieldIdentity:
			p.Identity = string(f.bytes)
		case participantFieldJoinedAt:
			p.JoinedAt, err = decodeTime(f.bytes)
		}
		return err
	})
	return p, err
}

func encodeMessage(m domain.Message) ([]byte, error) {
	var b []byte
	b = appendString(b, messageFieldID, m.ID.String())
	b = appendVarint(b, messageFieldRoomID, uint64(m.RoomID))
	b = appendString(b, messageFieldSender, m.Sender)
	b = appendString(b, messageFieldBody, m.Body)
	b = appendString(b, messageFieldLang, m.Lang)
	b, err := appendTime(b, messageFieldCreatedAt, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return appendVarint(b, messageFieldSeq, m.Seq), nil
}

func decodeMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := decodeFields(b, func(f field) (err error) {
		switch f.num {
		case messageFieldID:
			m.ID, err = uuid.ParseBytes(f.bytes)
		case messageFieldRoomID:
			m.RoomID = domain.RoomID(f.varint)
		case messageFieldSender:
			m.Sender = string(f.bytes)
		case messageFieldBody:
			m.Body = string(f.bytes)
		case messageFieldLang:
			m.Lang = string(f.bytes)
		case messageFieldCreatedAt:
			m.CreatedAt, err = decodeTime(f.bytes)
		case messageFieldSeq:
			m.Seq = f.varint
		}
		return err
	})
	return m, err
}

func encodeReadStatus(s domain.ReadStatus) []byte {
	var b []byte
	b = appendString(b, readStatusFieldMessageID, s.MessageID.String())
	b = appendVarint(b, readStatusFieldRoomID, uint64(s.RoomID))
	b = appendString(b, readStatusFieldIdentity, s.Identity)
	return appendBool(b, readStatusFieldIsRead, s.IsRead)
}

func decodeReadStatus(b []byte) (domain.ReadStatus, error) {
	var s domain.ReadStatus
	err := decodeFields(b, func(f field) (err error) {
		switch f.num {
		case readStatusFieldMessageID:
			s.MessageID, err = uuid.ParseBytes(f.bytes)
		case readStatusFieldRoomID:
			s.RoomID = domain.RoomID(f.varint)
		case readStatusFieldIdentity:
			s.Identity = string(f.bytes)
		case readStatusFieldIsRead:
			s.IsRead = protowire.DecodeBool(f.varint)
		}
		return err
	})
	return s, err
}
