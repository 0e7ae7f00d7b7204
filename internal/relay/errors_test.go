package relay

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMapping(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err        error
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{newError(KindUnauthorized, "authenticate", cause), KindUnauthorized, http.StatusUnauthorized, MsgUnauthorized},
		{newError(KindUpstream, "generate", cause), KindUpstream, http.StatusInternalServerError, MsgProcessingFailed},
		{newError(KindTransport, "generate", cause), KindTransport, http.StatusInternalServerError, MsgProcessingFailed},
		{newError(KindStorage, "persist", cause), KindStorage, http.StatusInternalServerError, MsgProcessingFailed},
		{fmt.Errorf("wrapped: %w", newError(KindParse, "decode", cause)), KindParse, http.StatusInternalServerError, MsgProcessingFailed},
		{cause, KindUnknown, http.StatusInternalServerError, MsgProcessingFailed},
	}
	for _, tc := range tests {
		if got := KindOf(tc.err); got != tc.wantKind {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.wantKind)
		}
		if got := StatusCode(tc.err); got != tc.wantStatus {
			t.Fatalf("StatusCode(%v) = %d, want %d", tc.err, got, tc.wantStatus)
		}
		if got := PublicMessage(tc.err); got != tc.wantMsg {
			t.Fatalf("PublicMessage(%v) = %q, want %q", tc.err, got, tc.wantMsg)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := newError(KindStorage, "persist", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
	if err.Error() != "relay: persist: storage: disk full" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
