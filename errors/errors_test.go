package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(401, "unauthorized access")
	if err.GetCode() != 401 {
		t.Errorf("expected code 401, got %d", err.GetCode())
	}
	if err.GetMessage() != "unauthorized access" {
		t.Errorf("expected message 'unauthorized access', got %s", err.GetMessage())
	}

	if got := New(400, "%d%% of quota used", 100).GetMessage(); got != "100% of quota used" {
		t.Errorf("expected escaped percent, got %s", got)
	}
	if got := New(400, "retry in %ds", 5).GetMessage(); got != "retry in 5s" {
		t.Errorf("expected formatted message, got %s", got)
	}
}

func TestErrorString(t *testing.T) {
	err := BadGateway("transport failure").
		WithMetadata(map[string]string{"status": "500", "endpoint": "https://push.example"}).
		WithCause(errors.New("EOF"))

	want := "code=502, message=transport failure, metadata={endpoint=https://push.example, status=500}, cause=EOF"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(401, "unauthorized")

	if err2 := err.WithMetadata(map[string]string{}); err != err2 {
		t.Error("WithMetadata with empty map should return same instance")
	}

	err3 := err.WithMetadata(map[string]string{"owner": "alice", "action": "subscribe"})
	if err == err3 {
		t.Error("WithMetadata should return new instance")
	}
	if err.GetMetadata() != nil {
		t.Error("original error must not change")
	}

	metadata := err3.GetMetadata()
	if metadata["owner"] != "alice" || metadata["action"] != "subscribe" {
		t.Errorf("metadata not set correctly: %v", metadata)
	}
	metadata["owner"] = "mallory"
	if err3.GetMetadata()["owner"] != "alice" {
		t.Error("GetMetadata must return a copy")
	}
}

func TestWithCause(t *testing.T) {
	originalErr := errors.New("database connection failed")
	err := New(500, "internal server error").WithCause(originalErr)

	if err.GetCause() != originalErr {
		t.Error("cause not set correctly")
	}
	if !errors.Is(err, originalErr) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestIsMatchesAnnotatedCopies(t *testing.T) {
	sentinel := Gone("subscription expired")
	annotated := sentinel.WithMetadata(map[string]string{"status": "410"})
	wrapped := fmt.Errorf("dispatch: %w", annotated)

	if !Is(wrapped, sentinel) {
		t.Error("sentinel should match an annotated copy through fmt wrapping")
	}
	if Is(wrapped, Gone("other")) {
		t.Error("different message must not match")
	}
	if Is(wrapped, BadGateway("subscription expired")) {
		t.Error("different code must not match")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, 503, "unavailable") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	dbErr := errors.New("connection timeout")
	err := Wrap(dbErr, 503, "service unavailable")
	if err.GetCode() != 503 || !errors.Is(err, dbErr) {
		t.Errorf("unexpected wrap result: %v", err)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}

	stdErr := errors.New("standard error")
	wrappedErr := FromError(stdErr)
	if wrappedErr.GetCode() != UnknownCode {
		t.Errorf("expected code %d, got %d", UnknownCode, wrappedErr.GetCode())
	}
	if !errors.Is(wrappedErr, stdErr) {
		t.Error("FromError should keep the original as cause")
	}

	existingErr := New(404, "not found")
	if FromError(existingErr) != existingErr {
		t.Error("FromError should return same instance for *Error")
	}
	if FromError(fmt.Errorf("lookup: %w", existingErr)) != existingErr {
		t.Error("FromError should find *Error in the chain")
	}
}

func TestCode(t *testing.T) {
	if Code(nil) != 0 {
		t.Error("nil has no code")
	}
	if Code(errors.New("x")) != UnknownCode {
		t.Error("plain errors are unknown")
	}
	if Code(fmt.Errorf("save: %w", UnprocessableEntity("missing credential"))) != 422 {
		t.Error("expected 422 through wrapping")
	}
}

func BenchmarkNewError(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New(500, "internal server error")
	}
}

func BenchmarkErrorString(b *testing.B) {
	err := New(502, "transport failure").
		WithMetadata(map[string]string{"endpoint": "https://push.example", "status": "503"}).
		WithCause(errors.New("EOF"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = err.Error()
	}
}
