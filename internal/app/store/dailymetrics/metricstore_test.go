package metricstore_test

import (
	"testing"
	"time"

	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	"github.com/realtyview/agentpulse/internal/domain/models"
	"github.com/realtyview/agentpulse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsert_OverwritesSameDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := metricstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agentID := primitive.NewObjectID()
	day := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC) // mid-day; must truncate

	first := models.DailyMetrics{
		AgentID:           agentID,
		MetricDate:        day,
		FacebookFollowers: 100,
		FacebookPosts:     5,
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	second := models.DailyMetrics{
		AgentID:            agentID,
		MetricDate:         day.Add(2 * time.Hour), // same calendar day
		FacebookFollowers:  120,
		FacebookPosts:      6,
		InstagramFollowers: 40,
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	count, err := db.Collection("daily_metrics").CountDocuments(ctx, bson.M{"agent_id": agentID})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d documents for the day, want exactly 1", count)
	}

	got, err := store.Latest(ctx, agentID)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a metrics document")
	}
	if got.FacebookFollowers != 120 {
		t.Errorf("FacebookFollowers: got %d, want latest value 120", got.FacebookFollowers)
	}
	if got.TotalFollowers != 160 {
		t.Errorf("TotalFollowers: got %d, want 160", got.TotalFollowers)
	}
	if !got.MetricDate.Equal(models.DayOf(day)) {
		t.Errorf("MetricDate: got %v, want day-truncated %v", got.MetricDate, models.DayOf(day))
	}
}

func TestUpsert_RequiresAgentID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := metricstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Upsert(ctx, models.DailyMetrics{MetricDate: time.Now()})
	if err == nil {
		t.Error("expected error for missing agent id")
	}
}

func TestRange_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := metricstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agentID := primitive.NewObjectID()
	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		fixtures.CreateDailyMetrics(ctx, agentID, base.AddDate(0, 0, -i), 100-i, 50)
	}

	rows, err := store.Range(ctx, agentID, base.AddDate(0, 0, -2), base)
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !rows[0].MetricDate.After(rows[1].MetricDate) {
		t.Error("expected newest day first")
	}
}

func TestLatest_NoData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := metricstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.Latest(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for never-synced agent")
	}
}

func TestTotalsForDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := metricstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	fixtures.CreateDailyMetrics(ctx, primitive.NewObjectID(), day, 100, 50)
	fixtures.CreateDailyMetrics(ctx, primitive.NewObjectID(), day, 200, 25)
	fixtures.CreateDailyMetrics(ctx, primitive.NewObjectID(), day.AddDate(0, 0, -1), 999, 999)

	totals, err := store.TotalsForDay(ctx, day)
	if err != nil {
		t.Fatalf("TotalsForDay failed: %v", err)
	}
	if totals.Followers != 375 {
		t.Errorf("Followers: got %d, want 375", totals.Followers)
	}
}
