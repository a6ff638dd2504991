// internal/domain/models/dailymetrics.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyMetrics holds one agent's social counters for one calendar day.
//
// Exactly one document exists per (agent_id, metric_date) pair; re-running a
// sync on the same day overwrites the document rather than accumulating.
type DailyMetrics struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID    primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	MetricDate time.Time          `bson:"metric_date" json:"metric_date"` // UTC, truncated to day

	FacebookFollowers   int `bson:"facebook_followers" json:"facebook_followers"`
	FacebookImpressions int `bson:"facebook_impressions" json:"facebook_impressions"`
	FacebookReach       int `bson:"facebook_reach" json:"facebook_reach"`
	FacebookEngagement  int `bson:"facebook_engagement" json:"facebook_engagement"`
	FacebookPosts       int `bson:"facebook_posts" json:"facebook_posts"`

	InstagramFollowers   int `bson:"instagram_followers" json:"instagram_followers"`
	InstagramImpressions int `bson:"instagram_impressions" json:"instagram_impressions"`
	InstagramReach       int `bson:"instagram_reach" json:"instagram_reach"`
	InstagramEngagement  int `bson:"instagram_engagement" json:"instagram_engagement"`
	InstagramMedia       int `bson:"instagram_media" json:"instagram_media"`

	TotalFollowers   int `bson:"total_followers" json:"total_followers"`
	TotalImpressions int `bson:"total_impressions" json:"total_impressions"`
	TotalReach       int `bson:"total_reach" json:"total_reach"`
	TotalEngagement  int `bson:"total_engagement" json:"total_engagement"`
	TotalPosts       int `bson:"total_posts" json:"total_posts"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ComputeTotals fills the combined counters from the per-platform ones.
func (m *DailyMetrics) ComputeTotals() {
	m.TotalFollowers = m.FacebookFollowers + m.InstagramFollowers
	m.TotalImpressions = m.FacebookImpressions + m.InstagramImpressions
	m.TotalReach = m.FacebookReach + m.InstagramReach
	m.TotalEngagement = m.FacebookEngagement + m.InstagramEngagement
	m.TotalPosts = m.FacebookPosts + m.InstagramMedia
}

// DayOf truncates a time to its UTC calendar day, the upsert key granularity
// for daily metrics.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
