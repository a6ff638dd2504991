package syncer

import (
	"context"
	"fmt"
	"time"

	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultPacing is the delay between agents in a batch run. The Graph API
// enforces burst limits per second in addition to the hourly budget, so
// agents are processed strictly sequentially with a pause in between.
const DefaultPacing = time.Second

// AgentOutcome is one agent's entry in a batch summary.
type AgentOutcome struct {
	AgentID   primitive.ObjectID `json:"agent_id"`
	AgentName string             `json:"agent_name"`
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	APICalls  int                `json:"api_calls"`
}

// BatchResult aggregates a full batch run.
type BatchResult struct {
	TotalAgents    int                  `json:"total_agents"`
	Synced         int                  `json:"successful_syncs"`
	Failed         int                  `json:"failed_syncs"`
	TotalAPICalls  int                  `json:"total_api_calls"`
	FailedAgentIDs []primitive.ObjectID `json:"failed_agent_ids,omitempty"`
	Outcomes       []AgentOutcome       `json:"results"`
}

// Batch drives AgentSyncer across every sync-eligible agent.
type Batch struct {
	agents *agentstore.Store
	syncer *AgentSyncer
	pacing time.Duration
	log    *zap.Logger
}

// NewBatch creates a batch orchestrator. A non-positive pacing falls back to
// DefaultPacing.
func NewBatch(agents *agentstore.Store, agentSyncer *AgentSyncer, pacing time.Duration, logger *zap.Logger) *Batch {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &Batch{agents: agents, syncer: agentSyncer, pacing: pacing, log: logger}
}

// SyncAll processes every agent with at least one platform credential,
// strictly sequentially with pacing between agents. One agent's failure
// never aborts the batch: per-agent errors become failed outcome entries.
// The only outright failure is the initial agent listing query (or context
// cancellation during the pacing wait).
func (b *Batch) SyncAll(ctx context.Context) (BatchResult, error) {
	var res BatchResult

	agents, err := b.agents.ListSyncEligible(ctx)
	if err != nil {
		return res, fmt.Errorf("list eligible agents: %w", err)
	}
	res.TotalAgents = len(agents)

	b.log.Info("batch sync started", zap.Int("agents", len(agents)))

	for i, agent := range agents {
		if i > 0 {
			timer := time.NewTimer(b.pacing)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return res, ctx.Err()
			}
		}

		outcome := AgentOutcome{AgentID: agent.ID, AgentName: agent.FullName}
		sr, err := b.syncer.SyncAgent(ctx, agent.ID)
		outcome.APICalls = sr.APICalls
		res.TotalAPICalls += sr.APICalls

		switch {
		case err != nil:
			outcome.Error = err.Error()
			res.Failed++
			res.FailedAgentIDs = append(res.FailedAgentIDs, agent.ID)
			b.log.Error("agent sync errored",
				zap.String("agent_id", agent.ID.Hex()),
				zap.String("agent", agent.FullName),
				zap.Error(err))
		case sr.Success:
			outcome.Success = true
			outcome.Error = sr.Error // informational platform errors, if any
			res.Synced++
		default:
			outcome.Error = sr.Error
			res.Failed++
			res.FailedAgentIDs = append(res.FailedAgentIDs, agent.ID)
		}

		res.Outcomes = append(res.Outcomes, outcome)
	}

	b.log.Info("batch sync finished",
		zap.Int("synced", res.Synced),
		zap.Int("failed", res.Failed),
		zap.Int("api_calls", res.TotalAPICalls))
	return res, nil
}
