// Package syncjobstore is the durable ledger of sync attempts and the
// throttle policy for batch syncs.
//
// Job status transitions are guarded: a job moves pending -> running ->
// {completed, failed, partial} and never backwards. Illegal transitions
// return models.ErrInvalidTransition instead of silently overwriting.
package syncjobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BatchCooldown is the minimum interval between successful batch-all syncs.
const BatchCooldown = 12 * time.Hour

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("sync job not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sync_jobs")}
}

// NewJob holds the fields for creating a sync job record.
type NewJob struct {
	Type        models.SyncType
	AgentID     *primitive.ObjectID
	TriggeredBy string
	TotalAgents int
}

// Create inserts a pending job with zeroed counters.
func (s *Store) Create(ctx context.Context, nj NewJob) (models.SyncJob, error) {
	if !nj.Type.IsValid() {
		return models.SyncJob{}, fmt.Errorf("unknown sync type %q", nj.Type)
	}

	job := models.SyncJob{
		ID:          primitive.NewObjectID(),
		Type:        nj.Type,
		Status:      models.SyncPending,
		AgentID:     nj.AgentID,
		TriggeredBy: nj.TriggeredBy,
		TotalAgents: nj.TotalAgents,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, job); err != nil {
		return models.SyncJob{}, fmt.Errorf("insert sync job: %w", err)
	}
	return job, nil
}

// GetByID loads a job by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SyncJob, error) {
	var job models.SyncJob
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Start transitions a pending job to running and stamps its start time.
// The update is conditional on the current status so a second Start, or a
// Start on a finished job, fails with ErrInvalidTransition.
func (s *Store) Start(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SyncPending},
		bson.M{"$set": bson.M{"status": models.SyncRunning, "started_at": now}},
	)
	if err != nil {
		return fmt.Errorf("start sync job: %w", err)
	}
	if res.MatchedCount == 0 {
		job, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, job.Status, models.SyncRunning)
	}
	return nil
}

// Completion holds the final result data written when a job ends.
type Completion struct {
	ID             primitive.ObjectID
	Status         models.SyncStatus // completed, failed, or partial
	AgentsSynced   int
	AgentsFailed   int
	FailedAgentIDs []primitive.ObjectID
	APICallsUsed   int
	Error          string
}

// Complete transitions a running job to a terminal status, stamping the
// completion time and deriving duration from the stored start time. The
// error message, if any, is persisted verbatim for operator diagnosis.
func (s *Store) Complete(ctx context.Context, c Completion) error {
	if !c.Status.IsTerminal() {
		return fmt.Errorf("%w: completion status %q is not terminal", models.ErrInvalidTransition, c.Status)
	}

	job, err := s.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := models.ValidateTransition(job.Status, c.Status); err != nil {
		return err
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":         c.Status,
		"completed_at":   now,
		"agents_synced":  c.AgentsSynced,
		"agents_failed":  c.AgentsFailed,
		"api_calls_used": c.APICallsUsed,
		"error":          c.Error,
	}
	if len(c.FailedAgentIDs) > 0 {
		set["failed_agent_ids"] = c.FailedAgentIDs
	}
	// Duration is only derivable once both timestamps exist.
	if job.StartedAt != nil {
		set["duration_seconds"] = now.Sub(*job.StartedAt).Seconds()
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": c.ID, "status": models.SyncRunning},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("complete sync job: %w", err)
	}
	if res.MatchedCount == 0 {
		// Lost a race since the GetByID above; re-read for the real status.
		job, err := s.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, job.Status, c.Status)
	}
	return nil
}

// Recent returns the newest jobs first, for dashboard display.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.SyncJob, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list sync jobs: %w", err)
	}
	defer cur.Close(ctx)

	var jobs []models.SyncJob
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// LastBatchSyncTime returns the completion time of the most recent fully
// completed batch-all job, or nil if none exists. Partial batches and
// single-agent syncs do not count toward the batch cooldown.
func (s *Store) LastBatchSyncTime(ctx context.Context) (*time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "completed_at", Value: -1}})
	filter := bson.M{
		"status":    models.SyncCompleted,
		"sync_type": models.SyncTypeBatchAll,
	}

	var job models.SyncJob
	err := s.c.FindOne(ctx, filter, opts).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last batch sync lookup: %w", err)
	}
	return job.CompletedAt, nil
}

// Eligibility is the result of a batch cooldown check.
type Eligibility struct {
	CanSync        bool       `json:"can_sync"`
	LastSyncTime   *time.Time `json:"last_sync_time,omitempty"`
	HoursUntilNext float64    `json:"hours_until_next"`
}

// CanSyncNow enforces the 12-hour minimum interval between successful
// batch-all syncs. With no prior completed batch, sync is immediately
// permitted.
func (s *Store) CanSyncNow(ctx context.Context) (Eligibility, error) {
	last, err := s.LastBatchSyncTime(ctx)
	if err != nil {
		return Eligibility{}, err
	}
	if last == nil {
		return Eligibility{CanSync: true}, nil
	}

	elapsed := time.Since(*last)
	if elapsed >= BatchCooldown {
		return Eligibility{CanSync: true, LastSyncTime: last}, nil
	}
	return Eligibility{
		CanSync:        false,
		LastSyncTime:   last,
		HoursUntilNext: (BatchCooldown - elapsed).Hours(),
	}, nil
}
