package metricsstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// failingThreshold is the consecutive-failure count at which an agent is
// surfaced as failing on the dashboard.
const failingThreshold = 3

// Counts is the set of roster totals shown on the dashboard.
type Counts struct {
	TotalAgents   int64 `json:"total_agents"`
	Connected     int64 `json:"connected_agents"`
	SyncedLast24h int64 `json:"synced_last_24h"`
	Failing       int64 `json:"failing_agents"`
}

// FetchDashboardCounts returns the high-level agent counts used by the
// dashboard. Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	agents := db.Collection("agents")

	if n, err := agents.CountDocuments(ctx, bson.M{}); err == nil {
		out.TotalAgents = n
	}

	connectedFilter := bson.M{"$or": []bson.M{
		{"facebook_page_id": bson.M{"$type": "string", "$ne": ""}},
		{"instagram_account_id": bson.M{"$type": "string", "$ne": ""}},
	}}
	if n, err := agents.CountDocuments(ctx, connectedFilter); err == nil {
		out.Connected = n
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	if n, err := agents.CountDocuments(ctx, bson.M{"last_successful_sync": bson.M{"$gte": since}}); err == nil {
		out.SyncedLast24h = n
	}

	if n, err := agents.CountDocuments(ctx, bson.M{"consecutive_failures": bson.M{"$gte": failingThreshold}}); err == nil {
		out.Failing = n
	}

	return out
}
