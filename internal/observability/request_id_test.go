package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestIDReturnsUUID(t *testing.T) {
	id := NewRequestID()
	if id == "" {
		t.Fatal("expected non-empty request id")
	}

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid UUID, got %q: %v", id, err)
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := "listing-req-42"

	ctx = ContextWithRequestID(ctx, want)
	got := RequestIDFromContext(ctx)

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRequestIDFromContextWhenMissingOrWrongType(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		got := RequestIDFromContext(context.Background())
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		got := RequestIDFromContext(ctx)
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})
}

func TestRequestIDFromHeader(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{in: "", ok: false},
		{in: "3f1c9a2e-listing", ok: true},
		{in: "tab\tinside", ok: false},
		{in: "naïve", ok: false},
	}

	for _, tc := range tests {
		got, ok := requestIDFromHeader(tc.in)
		if ok != tc.ok {
			t.Fatalf("requestIDFromHeader(%q): expected ok=%t, got %t", tc.in, tc.ok, ok)
		}
		if ok && got != tc.in {
			t.Fatalf("expected %q, got %q", tc.in, got)
		}
	}
}
