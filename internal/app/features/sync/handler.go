// Package sync exposes the sync trigger and status endpoints. Triggers
// enforce the batch and per-agent cooldowns and the hourly rate-limit
// forecast before any Graph API call is spent; throttled requests are JSON
// 429 responses carrying machine-readable wait values.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	ratelimitstore "github.com/realtyview/agentpulse/internal/app/store/ratelimit"
	syncjobstore "github.com/realtyview/agentpulse/internal/app/store/syncjobs"
	"github.com/realtyview/agentpulse/internal/app/system/syncer"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// AgentCooldown is the minimum interval between successful syncs of the
	// same agent. It is independent of the batch cooldown.
	AgentCooldown = 30 * time.Minute

	// callsPerAgentEstimate is the worst-case Graph API spend for one agent
	// in a batch (metrics + content on both platforms).
	callsPerAgentEstimate = 4
	// singleAgentEstimate is the pre-check estimate for a one-off sync.
	singleAgentEstimate = 3

	defaultJobsLimit = 20
	maxJobsLimit     = 100
)

// Handler holds the dependencies for the sync endpoints.
type Handler struct {
	jobs   *syncjobstore.Store
	rate   *ratelimitstore.Store
	agents *agentstore.Store
	syncer *syncer.AgentSyncer
	batch  *syncer.Batch
	log    *zap.Logger
}

func NewHandler(jobs *syncjobstore.Store, rate *ratelimitstore.Store, agents *agentstore.Store, agentSyncer *syncer.AgentSyncer, batch *syncer.Batch, logger *zap.Logger) *Handler {
	return &Handler{
		jobs:   jobs,
		rate:   rate,
		agents: agents,
		syncer: agentSyncer,
		batch:  batch,
		log:    logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// TriggerBatch handles POST /api/sync/all.
//
// The request is rejected with 429 when the 12-hour batch cooldown has not
// elapsed, or when the worst-case call estimate (4 per eligible agent) does
// not fit in the current hour's budget. Otherwise it runs the batch
// synchronously and responds with the job id and the batch summary.
func (h *Handler) TriggerBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	elig, err := h.jobs.CanSyncNow(ctx)
	if err != nil {
		h.log.Error("batch eligibility check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not check sync eligibility")
		return
	}
	if !elig.CanSync {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":            "batch sync is on cooldown",
			"last_sync_time":   elig.LastSyncTime,
			"hours_until_next": elig.HoursUntilNext,
		})
		return
	}

	eligible, err := h.agents.ListSyncEligible(ctx)
	if err != nil {
		h.log.Error("eligible agent listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list agents")
		return
	}

	forecast, err := h.rate.Check(ctx, callsPerAgentEstimate*len(eligible))
	if err != nil {
		h.log.Error("rate limit check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not check rate limit")
		return
	}
	if !forecast.CanProceed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "hourly API call budget cannot cover a full batch",
			"rate_limit": forecast,
		})
		return
	}

	job, err := h.jobs.Create(ctx, syncjobstore.NewJob{
		Type:        models.SyncTypeBatchAll,
		TriggeredBy: "admin_api",
		TotalAgents: len(eligible),
	})
	if err != nil {
		h.log.Error("sync job creation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create sync job")
		return
	}
	if err := h.jobs.Start(ctx, job.ID); err != nil {
		h.log.Error("sync job start failed", zap.String("job_id", job.ID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start sync job")
		return
	}

	var (
		res    syncer.BatchResult
		runErr error
		status models.SyncStatus
	)
	// The job must reach a terminal status even if the batch panics or the
	// request context dies mid-run, so completion happens in a deferred path
	// with its own context.
	func() {
		defer func() {
			if p := recover(); p != nil {
				runErr = fmt.Errorf("batch sync panicked: %v", p)
			}
			status = h.finalizeBatch(job.ID, res, runErr)
		}()
		res, runErr = h.batch.SyncAll(ctx)
	}()

	if runErr != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  runErr.Error(),
			"job_id": job.ID,
			"status": status,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":           job.ID,
		"status":           status,
		"total_agents":     res.TotalAgents,
		"successful_syncs": res.Synced,
		"failed_syncs":     res.Failed,
		"total_api_calls":  res.TotalAPICalls,
		"failed_agent_ids": res.FailedAgentIDs,
		"results":          res.Outcomes,
	})
}

// finalizeBatch records the spent calls and closes the job record. It runs
// on a background context so a cancelled request cannot leave the job
// running or the call ledger short.
func (h *Handler) finalizeBatch(jobID primitive.ObjectID, res syncer.BatchResult, runErr error) models.SyncStatus {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	if res.TotalAPICalls > 0 {
		if err := h.rate.IncrementCalls(ctx, res.TotalAPICalls); err != nil {
			h.log.Error("rate limit increment failed",
				zap.Int("calls", res.TotalAPICalls), zap.Error(err))
		}
	}

	status := models.SyncCompleted
	errMsg := ""
	switch {
	case runErr != nil:
		status = models.SyncFailed
		errMsg = runErr.Error()
	case res.Failed > 0 && res.Synced > 0:
		status = models.SyncPartial
	case res.Failed > 0:
		status = models.SyncFailed
	}

	if err := h.jobs.Complete(ctx, syncjobstore.Completion{
		ID:             jobID,
		Status:         status,
		AgentsSynced:   res.Synced,
		AgentsFailed:   res.Failed,
		FailedAgentIDs: res.FailedAgentIDs,
		APICallsUsed:   res.TotalAPICalls,
		Error:          errMsg,
	}); err != nil {
		h.log.Error("sync job completion failed",
			zap.String("job_id", jobID.Hex()), zap.Error(err))
	}
	return status
}

// TriggerAgent handles POST /api/sync/agents/{agentID}.
//
// The per-agent 30-minute cooldown is measured against the agent's last
// successful sync and is independent of the batch cooldown.
func (h *Handler) TriggerAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "agentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.agents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, agentstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		h.log.Error("agent lookup failed", zap.String("agent_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load agent")
		return
	}

	if agent.LastSuccessfulSync != nil {
		elapsed := time.Since(*agent.LastSuccessfulSync)
		if elapsed < AgentCooldown {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":                "agent was synced recently",
				"last_successful_sync": agent.LastSuccessfulSync,
				"minutes_until_next":   (AgentCooldown - elapsed).Minutes(),
			})
			return
		}
	}

	forecast, err := h.rate.Check(ctx, singleAgentEstimate)
	if err != nil {
		h.log.Error("rate limit check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not check rate limit")
		return
	}
	if !forecast.CanProceed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "hourly API call budget exhausted",
			"rate_limit": forecast,
		})
		return
	}

	job, err := h.jobs.Create(ctx, syncjobstore.NewJob{
		Type:        models.SyncTypeSingleAgent,
		AgentID:     &id,
		TriggeredBy: "admin_api",
		TotalAgents: 1,
	})
	if err != nil {
		h.log.Error("sync job creation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create sync job")
		return
	}
	if err := h.jobs.Start(ctx, job.ID); err != nil {
		h.log.Error("sync job start failed", zap.String("job_id", job.ID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start sync job")
		return
	}

	res, runErr := h.syncer.SyncAgent(ctx, id)
	h.finalizeAgent(job.ID, res, runErr)

	if runErr != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  runErr.Error(),
			"job_id": job.ID,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id": job.ID,
		"result": res,
	})
}

func (h *Handler) finalizeAgent(jobID primitive.ObjectID, res syncer.Result, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	if res.APICalls > 0 {
		if err := h.rate.IncrementCalls(ctx, res.APICalls); err != nil {
			h.log.Error("rate limit increment failed",
				zap.Int("calls", res.APICalls), zap.Error(err))
		}
	}

	c := syncjobstore.Completion{
		ID:           jobID,
		Status:       models.SyncCompleted,
		AgentsSynced: 1,
		APICallsUsed: res.APICalls,
	}
	switch {
	case runErr != nil:
		c.Status = models.SyncFailed
		c.AgentsSynced = 0
		c.AgentsFailed = 1
		c.FailedAgentIDs = []primitive.ObjectID{res.AgentID}
		c.Error = runErr.Error()
	case !res.Success:
		c.Status = models.SyncFailed
		c.AgentsSynced = 0
		c.AgentsFailed = 1
		c.FailedAgentIDs = []primitive.ObjectID{res.AgentID}
		c.Error = res.Error
	}

	if err := h.jobs.Complete(ctx, c); err != nil {
		h.log.Error("sync job completion failed",
			zap.String("job_id", jobID.Hex()), zap.Error(err))
	}
}

// Status handles GET /api/sync/status: cooldown state, rate-limit report,
// data freshness, and recent job history in one response for the dashboard.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	elig, err := h.jobs.CanSyncNow(ctx)
	if err != nil {
		h.log.Error("batch eligibility check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not check sync eligibility")
		return
	}

	report, err := h.rate.Status(ctx)
	if err != nil {
		h.log.Error("rate limit status failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not check rate limit")
		return
	}

	recent, err := h.jobs.Recent(ctx, 10)
	if err != nil {
		h.log.Error("recent jobs listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list sync jobs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"last_sync_time":   elig.LastSyncTime,
		"can_sync_now":     elig.CanSync,
		"hours_until_next": elig.HoursUntilNext,
		"data_freshness":   FreshnessLabel(elig.LastSyncTime, time.Now()),
		"rate_limit":       report,
		"recent_jobs":      recent,
	})
}

// ListJobs handles GET /api/sync/jobs?limit=N.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit := defaultJobsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxJobsLimit {
		limit = maxJobsLimit
	}

	jobs, err := h.jobs.Recent(ctx, limit)
	if err != nil {
		h.log.Error("recent jobs listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list sync jobs")
		return
	}
	if jobs == nil {
		jobs = []models.SyncJob{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}
