package relay

import (
	"errors"
	"net/http"
)

// Kind classifies why a relay call failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnauthorized: missing or wrong client key.
	KindUnauthorized
	// KindUpstream: the generation backend answered non-2xx or is misconfigured.
	KindUpstream
	// KindTransport: a network-level failure somewhere in the chain.
	KindTransport
	// KindStorage: the object-storage upload failed.
	KindStorage
	// KindParse: a payload could not be decoded.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindStorage:
		return "storage"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Messages returned to untrusted callers. Causes are only logged.
const (
	MsgUnauthorized     = "Unauthorized"
	MsgProcessingFailed = "Failed to process request"
)

// Error is a classified relay failure wrapping its cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := "relay: " + e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return KindUnknown
}

// StatusCode maps err to the HTTP status of the relay endpoint.
func StatusCode(err error) int {
	if KindOf(err) == KindUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// PublicMessage maps err to the message safe to show to callers.
func PublicMessage(err error) string {
	if KindOf(err) == KindUnauthorized {
		return MsgUnauthorized
	}
	return MsgProcessingFailed
}
