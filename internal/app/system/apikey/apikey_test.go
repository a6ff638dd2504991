package apikey_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/realtyview/agentpulse/internal/app/system/apikey"
	"go.uber.org/zap"
)

func protected(token string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return apikey.Require(token, zap.NewNop())(next)
}

func TestRequire_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sync/all", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRequire_WrongToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sync/all", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestRequire_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sync/all", nil)
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestRequire_NoTokenConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sync/all", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()

	protected("").ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}
