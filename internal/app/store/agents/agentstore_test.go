package agentstore_test

import (
	"errors"
	"testing"
	"time"

	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	"github.com/realtyview/agentpulse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, agentstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListSyncEligible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	both := fixtures.CreateConnectedAgent(ctx, "both")
	fbOnly := fixtures.CreateAgent(ctx, "fb-only", "page-1", "")
	igOnly := fixtures.CreateAgent(ctx, "ig-only", "", "ig-1")
	fixtures.CreateDisconnectedAgent(ctx, "neither")

	agents, err := store.ListSyncEligible(ctx)
	if err != nil {
		t.Fatalf("ListSyncEligible failed: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("got %d eligible agents, want 3", len(agents))
	}

	want := map[primitive.ObjectID]bool{both.ID: true, fbOnly.ID: true, igOnly.ID: true}
	for _, a := range agents {
		if !want[a.ID] {
			t.Errorf("unexpected eligible agent %s (%s)", a.ID.Hex(), a.FullName)
		}
	}
}

func TestRecordSyncSuccess_ResetsFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := fixtures.CreateConnectedAgent(ctx, "alice")
	now := time.Now().UTC()

	// Two failures then a success.
	if err := store.RecordSyncFailure(ctx, agent.ID, now, "token expired"); err != nil {
		t.Fatalf("RecordSyncFailure failed: %v", err)
	}
	if err := store.RecordSyncFailure(ctx, agent.ID, now, "token expired"); err != nil {
		t.Fatalf("RecordSyncFailure failed: %v", err)
	}

	got, err := store.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ConsecutiveFailures != 2 {
		t.Errorf("ConsecutiveFailures: got %d, want 2", got.ConsecutiveFailures)
	}
	if got.LastSyncError != "token expired" {
		t.Errorf("LastSyncError: got %q", got.LastSyncError)
	}
	if got.LastSuccessfulSync != nil {
		t.Error("LastSuccessfulSync should be unset after failures only")
	}

	if err := store.RecordSyncSuccess(ctx, agent.ID, now); err != nil {
		t.Fatalf("RecordSyncSuccess failed: %v", err)
	}

	got, err = store.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures after success: got %d, want 0", got.ConsecutiveFailures)
	}
	if got.LastSuccessfulSync == nil {
		t.Error("expected LastSuccessfulSync set")
	}
	if got.LastSyncStatus != "success" {
		t.Errorf("LastSyncStatus: got %q, want success", got.LastSyncStatus)
	}
	if got.LastSyncError != "" {
		t.Errorf("LastSyncError should be cleared, got %q", got.LastSyncError)
	}
}

func TestRecordSync_UnknownAgent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	if err := store.RecordSyncSuccess(ctx, primitive.NewObjectID(), now); !errors.Is(err, agentstore.ErrNotFound) {
		t.Errorf("RecordSyncSuccess: got %v, want ErrNotFound", err)
	}
	if err := store.RecordSyncFailure(ctx, primitive.NewObjectID(), now, "x"); !errors.Is(err, agentstore.ErrNotFound) {
		t.Errorf("RecordSyncFailure: got %v, want ErrNotFound", err)
	}
}

func TestCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateConnectedAgent(ctx, "a")
	b := fixtures.CreateConnectedAgent(ctx, "b")
	fixtures.CreateDisconnectedAgent(ctx, "c")

	now := time.Now().UTC()
	if err := store.RecordSyncSuccess(ctx, a.ID, now); err != nil {
		t.Fatalf("RecordSyncSuccess failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordSyncFailure(ctx, b.ID, now, "down"); err != nil {
			t.Fatalf("RecordSyncFailure failed: %v", err)
		}
	}

	total, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Count: got %d, want 3", total)
	}

	synced, err := store.CountSyncedSince(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSyncedSince failed: %v", err)
	}
	if synced != 1 {
		t.Errorf("CountSyncedSince: got %d, want 1", synced)
	}

	failing, err := store.CountFailing(ctx, 3)
	if err != nil {
		t.Fatalf("CountFailing failed: %v", err)
	}
	if failing != 1 {
		t.Errorf("CountFailing: got %d, want 1", failing)
	}
}
