package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

// maxRequestIDLen bounds client-supplied ids echoed into logs and headers.
const maxRequestIDLen = 128

func NewRequestID() string {
	return uuid.New().String()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

// requestIDFromHeader accepts a caller-supplied id made of printable ASCII.
func requestIDFromHeader(v string) (string, bool) {
	if v == "" || len(v) > maxRequestIDLen {
		return "", false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return "", false
		}
	}
	return v, true
}
