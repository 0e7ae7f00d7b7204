package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// KeyClient is checked against the CLIENT-API-Key header of relay callers.
	KeyClient = "client"
	// KeyServer is sent to the generation backend as SERVER-API-Key.
	KeyServer = "server"
)

// ErrUnknownKey is returned when a key name has no entry in the store.
var ErrUnknownKey = errors.New("credentials: unknown key")

// Provider hands out the shared secrets used by the relay. Implementations are
// injected into the endpoint and the backend client so tests can substitute keys.
type Provider interface {
	ClientKey(ctx context.Context) (string, error)
	ServerKey(ctx context.Context) (string, error)
}

// Store is a read-only, in-memory Provider populated once at startup.
type Store struct {
	tokens map[string]string
}

// NewStore builds a Store from the configured client and server keys.
func NewStore(clientKey, serverKey string) *Store {
	return &Store{tokens: map[string]string{
		KeyClient: strings.TrimSpace(clientKey),
		KeyServer: strings.TrimSpace(serverKey),
	}}
}

func (s *Store) ClientKey(ctx context.Context) (string, error) {
	return s.Token(ctx, KeyClient)
}

func (s *Store) ServerKey(ctx context.Context) (string, error) {
	return s.Token(ctx, KeyServer)
}

// Token returns the secret stored under name. An unset secret is returned as
// an empty string without error; callers decide what an empty key means.
func (s *Store) Token(ctx context.Context, name string) (string, error) {
	if s == nil {
		return "", errors.New("credentials: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, ok := s.tokens[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	return token, nil
}

var _ Provider = (*Store)(nil)
