package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/realtyview/agentpulse/internal/app/features/dashboard"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	syncjobstore "github.com/realtyview/agentpulse/internal/app/store/syncjobs"
	"github.com/realtyview/agentpulse/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := dashboard.NewHandler(db, metricstore.New(db), syncjobstore.New(db), zap.NewNop())
	return h, db
}

func TestServeSummary_Empty(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Counts struct {
			TotalAgents int64 `json:"total_agents"`
		} `json:"counts"`
		DataFreshness string `json:"data_freshness"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Counts.TotalAgents != 0 {
		t.Errorf("total_agents: got %d, want 0", body.Counts.TotalAgents)
	}
	if body.DataFreshness != "no_data" {
		t.Errorf("data_freshness: got %q, want no_data", body.DataFreshness)
	}
}

func TestServeSummary_WithData(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateConnectedAgent(ctx, "alice")
	b := fixtures.CreateAgent(ctx, "bob", "page-bob", "")
	now := time.Now().UTC()
	fixtures.CreateDailyMetrics(ctx, a.ID, now, 100, 50)
	fixtures.CreateDailyMetrics(ctx, b.ID, now, 200, 0)

	var body struct {
		Counts struct {
			TotalAgents int64 `json:"total_agents"`
			Connected   int64 `json:"connected_agents"`
		} `json:"counts"`
		TotalsToday struct {
			Followers int `json:"followers"`
		} `json:"totals_today"`
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Counts.TotalAgents != 2 || body.Counts.Connected != 2 {
		t.Errorf("counts: total=%d connected=%d, want 2/2", body.Counts.TotalAgents, body.Counts.Connected)
	}
	if body.TotalsToday.Followers != 350 {
		t.Errorf("followers total: got %d, want 350", body.TotalsToday.Followers)
	}
}
