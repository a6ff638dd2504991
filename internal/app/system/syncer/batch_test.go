package syncer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/realtyview/agentpulse/internal/app/system/syncer"
	"github.com/realtyview/agentpulse/internal/testutil"
	"go.uber.org/zap"
)

func newBatch(env syncEnv) *syncer.Batch {
	return syncer.NewBatch(env.agents, env.syncer, time.Millisecond, zap.NewNop())
}

func TestSyncAll_ContinuesPastFailingAgent(t *testing.T) {
	// Facebook metrics fail for everyone, so the FB-only agent fails while
	// the IG-only agent still succeeds.
	graph := healthyGraph()
	graph.pageErr = errors.New("graph api /page: Invalid OAuth access token. (code 190)")
	env := newSyncEnv(t, graph)
	fixtures := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fbOnly := fixtures.CreateAgent(ctx, "fb-only", "page-1", "")
	fixtures.CreateAgent(ctx, "ig-only", "", "ig-1")
	fixtures.CreateDisconnectedAgent(ctx, "nobody")

	res, err := newBatch(env).SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll errored: %v", err)
	}
	if res.TotalAgents != 2 {
		t.Errorf("TotalAgents: got %d, want 2 (disconnected agent excluded)", res.TotalAgents)
	}
	if res.Synced != 1 || res.Failed != 1 {
		t.Errorf("synced/failed: got %d/%d, want 1/1", res.Synced, res.Failed)
	}
	// Failed FB metrics call plus the IG-only agent's metrics + media.
	if res.TotalAPICalls != 3 {
		t.Errorf("TotalAPICalls: got %d, want 3", res.TotalAPICalls)
	}
	if len(res.FailedAgentIDs) != 1 || res.FailedAgentIDs[0] != fbOnly.ID {
		t.Errorf("FailedAgentIDs: got %v, want [%s]", res.FailedAgentIDs, fbOnly.ID.Hex())
	}
	if len(res.Outcomes) != 2 {
		t.Fatalf("Outcomes: got %d entries, want 2", len(res.Outcomes))
	}
}

func TestSyncAll_NoEligibleAgents(t *testing.T) {
	env := newSyncEnv(t, healthyGraph())
	fixtures := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateDisconnectedAgent(ctx, "nobody")

	res, err := newBatch(env).SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll errored: %v", err)
	}
	if res.TotalAgents != 0 || res.Synced != 0 || res.Failed != 0 {
		t.Errorf("expected an empty batch result, got %+v", res)
	}
}
