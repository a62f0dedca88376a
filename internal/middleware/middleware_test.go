package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assessgen/backend/internal/auth"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if p, found := auth.PrincipalFrom(r.Context()); found {
		w.Header().Set("X-Subject", p.Subject)
	}
	w.WriteHeader(http.StatusNoContent)
})

func TestAuth(t *testing.T) {
	tokens := auth.NewTokens("secret")
	valid, _ := tokens.Issue("admin-1", "admin", time.Hour)
	h := Auth(tokens)(ok)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/generate-questions", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, rec.Code)
		}
		if tt.want == http.StatusNoContent && rec.Header().Get("X-Subject") != "admin-1" {
			t.Errorf("%s: principal not attached", tt.name)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("expected the first two requests to pass")
	}
	if l.Allow("1.1.1.1") {
		t.Error("expected the third request to be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("expected a different client to pass")
	}

	now = now.Add(30 * time.Second)
	if !l.Allow("1.1.1.1") {
		t.Error("expected a token to be replenished after half the window")
	}

	now = now.Add(10 * time.Minute)
	l.Allow("3.3.3.3")
	if _, found := l.visitors["2.2.2.2"]; found {
		t.Error("expected idle visitor to be dropped")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	h := NewRateLimiter(1, time.Hour).Middleware(ok)

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest("POST", "/generate-questions", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(ok)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/health" || fields["status"] != int64(http.StatusNoContent) {
		t.Errorf("unexpected fields %v", fields)
	}
}
