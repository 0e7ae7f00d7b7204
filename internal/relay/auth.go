package relay

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"imagerelay/internal/infra/credentials"
)

// HeaderClientAPIKey carries the client-facing secret on relay requests.
const HeaderClientAPIKey = "CLIENT-API-Key"

var (
	errMissingKey    = errors.New("missing client key")
	errNotConfigured = errors.New("client key not configured")
	errKeyMismatch   = errors.New("client key mismatch")
)

// Authenticate compares the caller-supplied key with the configured client
// key byte for byte. An empty configured key rejects every caller.
func Authenticate(ctx context.Context, provider credentials.Provider, supplied string) error {
	if provider == nil {
		return newError(KindUnauthorized, "authenticate", errNotConfigured)
	}
	expected, err := provider.ClientKey(ctx)
	if err != nil {
		return newError(KindUnauthorized, "authenticate", fmt.Errorf("resolve client key: %w", err))
	}
	switch {
	case expected == "":
		return newError(KindUnauthorized, "authenticate", errNotConfigured)
	case supplied == "":
		return newError(KindUnauthorized, "authenticate", errMissingKey)
	case subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1:
		return newError(KindUnauthorized, "authenticate", errKeyMismatch)
	}
	return nil
}
