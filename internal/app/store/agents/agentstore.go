// Package agentstore persists agents and their sync-health fields.
package agentstore

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

// ErrNotFound is returned when an agent id does not exist.
var ErrNotFound = errors.New("agent not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("agents")}
}

// GetByID loads an agent by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error) {
	var a models.Agent
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new agent with timestamps set.
func (s *Store) Create(ctx context.Context, a models.Agent) (models.Agent, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Agent{}, fmt.Errorf("insert agent: %w", err)
	}
	return a, nil
}

// List returns all agents sorted by name, for dashboard display.
func (s *Store) List(ctx context.Context) ([]models.Agent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer cur.Close(ctx)

	var agents []models.Agent
	if err := cur.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Count returns the total number of agents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// ListSyncEligible returns every agent with at least one platform credential
// set, in natural collection order. Batch sync processing order follows this
// query's order; no fairness guarantee is made.
func (s *Store) ListSyncEligible(ctx context.Context) ([]models.Agent, error) {
	filter := bson.M{"$or": []bson.M{
		{"facebook_page_id": bson.M{"$type": "string", "$ne": ""}},
		{"instagram_account_id": bson.M{"$type": "string", "$ne": ""}},
	}}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sync-eligible agents: %w", err)
	}
	defer cur.Close(ctx)

	var agents []models.Agent
	if err := cur.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// RecordSyncSuccess stamps a successful sync attempt: both attempt and
// success timestamps are set and the consecutive failure counter resets.
func (s *Store) RecordSyncSuccess(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_successful_sync": at,
		"last_sync_attempt":    at,
		"last_sync_status":     "success",
		"last_sync_error":      "",
		"consecutive_failures": 0,
		"updated_at":           time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("record sync success: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordSyncFailure stamps a failed sync attempt and bumps the consecutive
// failure counter.
func (s *Store) RecordSyncFailure(ctx context.Context, id primitive.ObjectID, at time.Time, syncErr string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"last_sync_attempt": at,
			"last_sync_status":  "failed",
			"last_sync_error":   syncErr,
			"updated_at":        time.Now().UTC(),
		},
		"$inc": bson.M{"consecutive_failures": 1},
	})
	if err != nil {
		return fmt.Errorf("record sync failure: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSyncedSince returns how many agents have a successful sync at or
// after the given time.
func (s *Store) CountSyncedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"last_successful_sync": bson.M{"$gte": since}})
}

// CountFailing returns how many agents have at least the given number of
// consecutive sync failures.
func (s *Store) CountFailing(ctx context.Context, threshold int) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"consecutive_failures": bson.M{"$gte": threshold}})
}
