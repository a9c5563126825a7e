package services

import (
	"chat-relay/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	MaxMessageLength  = 4000
	MaxRoomNameLength = 100
)

type messageRequest struct {
	Body string `validate:"required,max=4000"`
}

type roomRequest struct {
	Name string `validate:"required,max=100"`
}

type memberRequest struct {
	Identity string `validate:"required,email,max=320"`
	Name     string `validate:"max=100"`
}

func validateBody(body string) error {
	if err := validate.Struct(messageRequest{Body: strings.TrimSpace(body)}); err != nil {
		return fmt.Errorf("%w: message body: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func validateRoomName(name string) error {
	if err := validate.Struct(roomRequest{Name: strings.TrimSpace(name)}); err != nil {
		return fmt.Errorf("%w: room name: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func validateMember(identity, name string) error {
	if err := validate.Struct(memberRequest{Identity: strings.TrimSpace(identity), Name: name}); err != nil {
		return fmt.Errorf("%w: member: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
