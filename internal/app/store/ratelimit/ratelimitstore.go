// Package ratelimitstore tracks outbound Graph API call volume against a
// per-hour ceiling shared across all sync activity.
//
// The tracker is advisory: Check is a read-only forecast, IncrementCalls is
// a ledger of calls actually spent. The two are deliberately separate
// operations because the number of calls a sync consumes is only known after
// the external API responds (a single agent sync can spend 0 to 4 calls).
// Callers are responsible for aborting when CanProceed is false.
package ratelimitstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMaxCallsPerHour is the hourly ceiling used when none is configured.
const DefaultMaxCallsPerHour = 200

type Store struct {
	c   *mongo.Collection
	max int
}

// New creates a rate-limit store with the given hourly ceiling.
// A non-positive ceiling falls back to DefaultMaxCallsPerHour.
func New(db *mongo.Database, maxPerHour int) *Store {
	if maxPerHour <= 0 {
		maxPerHour = DefaultMaxCallsPerHour
	}
	return &Store{c: db.Collection("rate_limits"), max: maxPerHour}
}

// Forecast is the result of a read-only rate-limit check.
type Forecast struct {
	CanProceed     bool `json:"can_proceed"`
	CurrentUsage   int  `json:"current_usage"`
	MaxAllowed     int  `json:"max_allowed"`
	CallsRemaining int  `json:"calls_remaining"`
	PercentUsed    int  `json:"percent_used"`
}

// Check reports whether callsNeeded additional calls fit inside the current
// hour window. It never mutates the counter.
func (s *Store) Check(ctx context.Context, callsNeeded int) (Forecast, error) {
	window := models.HourWindow(time.Now())

	var w models.RateLimitWindow
	err := s.c.FindOne(ctx, bson.M{"window_start": window}).Decode(&w)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return Forecast{}, fmt.Errorf("rate limit lookup: %w", err)
	}

	usage := w.CallsMade
	remaining := s.max - usage
	if remaining < 0 {
		remaining = 0
	}

	return Forecast{
		CanProceed:     usage+callsNeeded <= s.max,
		CurrentUsage:   usage,
		MaxAllowed:     s.max,
		CallsRemaining: remaining,
		PercentUsed:    usage * 100 / s.max,
	}, nil
}

// IncrementCalls adds n to the current hour window's counter, creating the
// window document if it does not exist yet. The increment is a single atomic
// $inc upsert so concurrent triggers never lose updates. Overage past the
// ceiling is recorded, not prevented; the counter is a ledger of actual
// usage, not a gate.
func (s *Store) IncrementCalls(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	window := models.HourWindow(time.Now())
	_, err := s.c.UpdateOne(ctx,
		bson.M{"window_start": window},
		bson.M{"$inc": bson.M{"calls_made": n}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("rate limit increment: %w", err)
	}
	return nil
}

// Level is the severity band of current rate-limit usage.
type Level string

const (
	LevelSafe     Level = "safe"     // under 50%
	LevelWarning  Level = "warning"  // 50-89%
	LevelCritical Level = "critical" // 90-99%
	LevelBlocked  Level = "blocked"  // at or past the ceiling
)

// LevelFor maps a usage percentage to its severity band.
func LevelFor(percentUsed int) Level {
	switch {
	case percentUsed >= 100:
		return LevelBlocked
	case percentUsed >= 90:
		return LevelCritical
	case percentUsed >= 50:
		return LevelWarning
	}
	return LevelSafe
}

// StatusReport is a human-facing view of the current window's usage.
type StatusReport struct {
	Level    Level    `json:"level"`
	Message  string   `json:"message"`
	Forecast Forecast `json:"details"`
}

// Status derives a severity band and message from the current hour window.
func (s *Store) Status(ctx context.Context) (StatusReport, error) {
	forecast, err := s.Check(ctx, 0)
	if err != nil {
		return StatusReport{}, err
	}

	level := LevelFor(forecast.PercentUsed)
	var msg string
	switch level {
	case LevelBlocked:
		msg = fmt.Sprintf("hourly API call limit reached (%d of %d used)", forecast.CurrentUsage, forecast.MaxAllowed)
	case LevelCritical:
		msg = fmt.Sprintf("hourly API call limit nearly reached (%d of %d used)", forecast.CurrentUsage, forecast.MaxAllowed)
	case LevelWarning:
		msg = fmt.Sprintf("over half of hourly API calls used (%d of %d)", forecast.CurrentUsage, forecast.MaxAllowed)
	default:
		msg = fmt.Sprintf("%d of %d hourly API calls used", forecast.CurrentUsage, forecast.MaxAllowed)
	}

	return StatusReport{Level: level, Message: msg, Forecast: forecast}, nil
}
