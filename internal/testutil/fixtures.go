package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func strPtr(s string) *string { return &s }

// CreateAgent inserts an agent with the given platform credentials.
// Pass empty strings to leave a platform disconnected.
func (f *Fixtures) CreateAgent(ctx context.Context, name, fbPageID, igAccountID string) models.Agent {
	f.t.Helper()

	now := time.Now().UTC()
	agent := models.Agent{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		Email:     name + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if fbPageID != "" {
		agent.FacebookPageID = strPtr(fbPageID)
		agent.FacebookToken = strPtr("fb-token-" + fbPageID)
	}
	if igAccountID != "" {
		agent.InstagramAccountID = strPtr(igAccountID)
		agent.InstagramToken = strPtr("ig-token-" + igAccountID)
	}

	if _, err := f.db.Collection("agents").InsertOne(ctx, agent); err != nil {
		f.t.Fatalf("failed to create test agent: %v", err)
	}
	return agent
}

// CreateConnectedAgent inserts an agent connected to both platforms.
func (f *Fixtures) CreateConnectedAgent(ctx context.Context, name string) models.Agent {
	f.t.Helper()
	return f.CreateAgent(ctx, name, "page-"+name, "ig-"+name)
}

// CreateDisconnectedAgent inserts an agent with no platform credentials.
func (f *Fixtures) CreateDisconnectedAgent(ctx context.Context, name string) models.Agent {
	f.t.Helper()
	return f.CreateAgent(ctx, name, "", "")
}

// CreateSyncJob inserts a sync job row directly, bypassing lifecycle checks.
// completedAt may be nil for non-terminal jobs.
func (f *Fixtures) CreateSyncJob(ctx context.Context, syncType models.SyncType, status models.SyncStatus, completedAt *time.Time) models.SyncJob {
	f.t.Helper()

	now := time.Now().UTC()
	job := models.SyncJob{
		ID:          primitive.NewObjectID(),
		Type:        syncType,
		Status:      status,
		CreatedAt:   now,
		CompletedAt: completedAt,
	}
	if completedAt != nil {
		started := completedAt.Add(-time.Minute)
		job.StartedAt = &started
	}

	if _, err := f.db.Collection("sync_jobs").InsertOne(ctx, job); err != nil {
		f.t.Fatalf("failed to create test sync job: %v", err)
	}
	return job
}

// CreateDailyMetrics inserts a metrics row for the given agent and day.
func (f *Fixtures) CreateDailyMetrics(ctx context.Context, agentID primitive.ObjectID, date time.Time, fbFollowers, igFollowers int) models.DailyMetrics {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.DailyMetrics{
		ID:                 primitive.NewObjectID(),
		AgentID:            agentID,
		MetricDate:         models.DayOf(date),
		FacebookFollowers:  fbFollowers,
		InstagramFollowers: igFollowers,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	m.ComputeTotals()

	if _, err := f.db.Collection("daily_metrics").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test daily metrics: %v", err)
	}
	return m
}
