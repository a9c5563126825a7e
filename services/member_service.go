package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	goerrors "errors"
	"log/slog"
	"strings"
)

// MemberService keeps the identity directory in line with authenticated callers.
type MemberService struct {
	log      *slog.Logger
	store    repositories.ChatStore
	attempts int
}

// NewMemberService returns the directory of known identities.
func NewMemberService(log *slog.Logger, store repositories.ChatStore) *MemberService {
	return &MemberService{log: log, store: store, attempts: defaultConflictAttempts}
}

// EnsureMember upserts the member, writing only when something changed.
// An empty name never overwrites a known one.
func (s *MemberService) EnsureMember(ctx context.Context, member domain.Member) error {
	if err := validateMember(member.Identity, member.Name); err != nil {
		return err
	}
	member.Identity = strings.TrimSpace(member.Identity)
	return retryOnConflict(ctx, s.attempts, func() error {
		return s.store.Update(ctx, func(tx repositories.ChatTx) error {
			known, err := tx.GetMember(member.Identity)
			switch {
			case goerrors.Is(err, errors.ErrIdentityNotFound):
			case err != nil:
				return err
			case member.Name == "" || known == member:
				return nil
			}
			s.log.Debug("Member saved", "identity", member.Identity)
			return tx.SaveMember(member)
		})
	})
}
