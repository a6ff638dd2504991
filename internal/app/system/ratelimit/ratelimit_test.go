package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/realtyview/agentpulse/internal/app/system/ratelimit"
)

func TestAllow_EnforcesLimit(t *testing.T) {
	l := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("client-a") {
		t.Error("request past the limit should be denied")
	}
	// Other keys are unaffected.
	if !l.Allow("client-b") {
		t.Error("a different client should still be allowed")
	}
}

func TestRemaining(t *testing.T) {
	l := ratelimit.New(5, time.Minute)

	if got := l.Remaining("x"); got != 5 {
		t.Errorf("Remaining before any request: got %d, want 5", got)
	}
	l.Allow("x")
	l.Allow("x")
	if got := l.Remaining("x"); got != 3 {
		t.Errorf("Remaining after 2 requests: got %d, want 3", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/sync/all", nil)
	req.RemoteAddr = "10.1.2.3:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", rec.Code)
	}
}

func TestClientIP_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.RemoteAddr = "10.0.0.1:1234"

	if got := ratelimit.ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP: got %q, want forwarded address", got)
	}
}
