// Package metricstore persists per-agent daily social metrics.
//
// Documents are keyed by (agent_id, metric_date); Upsert overwrites the
// day's counters so re-running a sync never duplicates or accumulates.
package metricstore

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

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("daily_metrics")}
}

// Upsert writes the metrics document for (m.AgentID, day of m.MetricDate),
// replacing any counters already stored for that day.
func (s *Store) Upsert(ctx context.Context, m models.DailyMetrics) error {
	if m.AgentID.IsZero() {
		return errors.New("daily metrics require an agent id")
	}

	day := models.DayOf(m.MetricDate)
	now := time.Now().UTC()
	m.ComputeTotals()

	update := bson.M{
		"$set": bson.M{
			"facebook_followers":   m.FacebookFollowers,
			"facebook_impressions": m.FacebookImpressions,
			"facebook_reach":       m.FacebookReach,
			"facebook_engagement":  m.FacebookEngagement,
			"facebook_posts":       m.FacebookPosts,

			"instagram_followers":   m.InstagramFollowers,
			"instagram_impressions": m.InstagramImpressions,
			"instagram_reach":       m.InstagramReach,
			"instagram_engagement":  m.InstagramEngagement,
			"instagram_media":       m.InstagramMedia,

			"total_followers":   m.TotalFollowers,
			"total_impressions": m.TotalImpressions,
			"total_reach":       m.TotalReach,
			"total_engagement":  m.TotalEngagement,
			"total_posts":       m.TotalPosts,

			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"agent_id": m.AgentID, "metric_date": day},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert daily metrics: %w", err)
	}
	return nil
}

// Range returns an agent's metrics between from and to inclusive, newest
// first, for chart rendering.
func (s *Store) Range(ctx context.Context, agentID primitive.ObjectID, from, to time.Time) ([]models.DailyMetrics, error) {
	filter := bson.M{
		"agent_id": agentID,
		"metric_date": bson.M{
			"$gte": models.DayOf(from),
			"$lte": models.DayOf(to),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "metric_date", Value: -1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list daily metrics: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.DailyMetrics
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns an agent's most recent metrics document, or nil if the
// agent has never been synced.
func (s *Store) Latest(ctx context.Context, agentID primitive.ObjectID) (*models.DailyMetrics, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "metric_date", Value: -1}})

	var m models.DailyMetrics
	err := s.c.FindOne(ctx, bson.M{"agent_id": agentID}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DayTotals holds agency-wide sums for one calendar day.
type DayTotals struct {
	Followers   int `bson:"followers" json:"followers"`
	Impressions int `bson:"impressions" json:"impressions"`
	Reach       int `bson:"reach" json:"reach"`
	Engagement  int `bson:"engagement" json:"engagement"`
	Posts       int `bson:"posts" json:"posts"`
}

// TotalsForDay sums the combined counters of every agent's document for the
// given day.
func (s *Store) TotalsForDay(ctx context.Context, day time.Time) (DayTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"metric_date": models.DayOf(day)}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"followers":   bson.M{"$sum": "$total_followers"},
			"impressions": bson.M{"$sum": "$total_impressions"},
			"reach":       bson.M{"$sum": "$total_reach"},
			"engagement":  bson.M{"$sum": "$total_engagement"},
			"posts":       bson.M{"$sum": "$total_posts"},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return DayTotals{}, fmt.Errorf("aggregate day totals: %w", err)
	}
	defer cur.Close(ctx)

	var rows []DayTotals
	if err := cur.All(ctx, &rows); err != nil {
		return DayTotals{}, err
	}
	if len(rows) == 0 {
		return DayTotals{}, nil
	}
	return rows[0], nil
}
