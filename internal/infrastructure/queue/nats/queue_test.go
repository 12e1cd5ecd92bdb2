package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

func TestEventRoundTripKeepsEnqueueTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := encodeEvent("doc-1", at)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	ev, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if ev.DocumentID != "doc-1" || !ev.EnqueuedAt.Equal(at) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDecodeAcceptsBareDocumentID(t *testing.T) {
	ev, err := decodeEvent([]byte(" doc-7 \n"))
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if ev.DocumentID != "doc-7" || !ev.EnqueuedAt.IsZero() {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDecodeRejectsInvalidEvents(t *testing.T) {
	for _, raw := range []string{"", "{", `{"enqueued_at":"2026-03-01T10:00:00Z"}`} {
		if _, err := decodeEvent([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	if _, err := encodeEvent(" ", time.Now()); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestClassifyNATSError(t *testing.T) {
	if c := classifyNATSError(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed)); !c.Retryable {
		t.Fatalf("expected closed connection to be retryable")
	}
	if c := classifyNATSError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("expected cancellation to be ignored, got %+v", c)
	}
	if c := classifyNATSError(nats.ErrBadSubject); c.Retryable {
		t.Fatalf("expected bad subject to be permanent")
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	if err := wrapTemporaryIfNeeded(nats.ErrNoServers); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary, got %v", err)
	}
	permanent := errors.New("nats: invalid subject")
	if err := wrapTemporaryIfNeeded(permanent); domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error to stay unwrapped, got %v", err)
	}
}
