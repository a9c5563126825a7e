package auth

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Identity is the caller resolved from a bearer token.
type Identity struct {
	Email string
	Name  string
	Roles []string
}

func (i Identity) Member() domain.Member {
	return domain.Member{Identity: i.Email, Name: i.Name}
}

// Resolver turns bearer tokens signed with the node secret into identities.
type Resolver struct {
	secret []byte
}

// NewResolver validates tokens signed with secret.
func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve validates token and returns its lowercased subject.
func (r *Resolver) Resolve(token string) (Identity, error) {
	claims, err := ValidateToken(r.secret, token)
	if err != nil {
		return Identity{}, err
	}
	// Only plain e-mail addresses are accepted as identities.
	email := strings.ToLower(claims.Subject)
	if err := validate.Var(email, "required,email,max=320"); err != nil {
		return Identity{}, fmt.Errorf("%w: subject is not an e-mail address", errors.ErrInvalidToken)
	}
	return Identity{
		Email: email,
		Name:  claims.Name,
		Roles: claims.Roles,
	}, nil
}

// ResolveRequest reads the token from the Authorization header, falling back to
// the token query parameter browsers use for websocket upgrades.
func (r *Resolver) ResolveRequest(req *http.Request) (Identity, error) {
	token := BearerToken(req.Header.Get("Authorization"))
	if token == "" {
		token = req.URL.Query().Get("token")
	}
	if token == "" {
		return Identity{}, fmt.Errorf("%w: no token", errors.ErrInvalidToken)
	}
	return r.Resolve(token)
}

// BearerToken extracts the token of an Authorization header, or returns "".
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
