package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteErrorWritesStandardizedJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}

	if got := body["error"]; got != "something went wrong" {
		t.Fatalf("expected error %q, got %q", "something went wrong", got)
	}

	if _, ok := body["request_id"]; ok {
		t.Fatal("did not expect request_id field in JSON body")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Principal float64 `json:"principal"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"principal": 1000}`},
		{name: "unknown field", body: `{"principal": 1000, "pool": true}`, wantErr: true},
		{name: "trailing object", body: `{"principal": 1000}{"principal": 2}`, wantErr: true},
		{name: "trailing brace", body: `{"principal": 1000}}`, wantErr: true},
		{name: "trailing bracket", body: `{"principal": 1000}]`, wantErr: true},
		{name: "trailing whitespace", body: "{\"principal\": 1000}\n"},
		{name: "malformed", body: `{principal}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst payload
			err := DecodeJSON(r, &dst)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%t, got %v", tc.wantErr, err)
			}
			if !tc.wantErr && dst.Principal != 1000 {
				t.Fatalf("expected principal 1000, got %g", dst.Principal)
			}
		})
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}

func TestReady(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all healthy", func(t *testing.T) {
		w := httptest.NewRecorder()
		Ready(map[string]Pinger{"rates": healthy})(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		w := httptest.NewRecorder()
		Ready(map[string]Pinger{"rates": healthy, "cache": broken})(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}

		var body struct {
			Checks map[string]string `json:"checks"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decoding response body: %v", err)
		}
		if body.Checks["cache"] != "connection refused" || body.Checks["rates"] != "ok" {
			t.Fatalf("unexpected checks %#v", body.Checks)
		}
	})
}
