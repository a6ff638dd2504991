// internal/domain/models/ratelimit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RateLimitWindow is the hourly accounting bucket for outbound Graph API
// calls. One document exists per wall-clock hour; calls_made only ever
// increases within a window. Stale windows are ignored, never deleted.
type RateLimitWindow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WindowStart time.Time          `bson:"window_start" json:"window_start"`
	CallsMade   int                `bson:"calls_made" json:"calls_made"`
}

// HourWindow truncates a time to its UTC wall-clock hour, the rate-limit
// bucket key.
func HourWindow(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
