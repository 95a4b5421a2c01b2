package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Pinger is a dependency checked by Ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready returns a readiness probe that fails with 503 while any dependency
// is unreachable.
func Ready(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
