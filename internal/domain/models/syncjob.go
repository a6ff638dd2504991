// internal/domain/models/syncjob.go
package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncType identifies what triggered a sync job.
type SyncType string

const (
	SyncTypeBatchAll       SyncType = "batch_all"
	SyncTypeSingleAgent    SyncType = "single_agent"
	SyncTypeAdminTriggered SyncType = "admin_triggered"
)

// IsValid reports whether t is a known sync type.
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeBatchAll, SyncTypeSingleAgent, SyncTypeAdminTriggered:
		return true
	}
	return false
}

// SyncStatus is the lifecycle state of a sync job.
// Legal transitions: pending -> running -> {completed, failed, partial}.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
	SyncPartial   SyncStatus = "partial"
)

// IsValid reports whether s is a known status.
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncPending, SyncRunning, SyncCompleted, SyncFailed, SyncPartial:
		return true
	}
	return false
}

// IsTerminal reports whether s is a final status. Terminal jobs cannot be
// restarted; a failed sync is superseded by a brand-new job record.
func (s SyncStatus) IsTerminal() bool {
	switch s {
	case SyncCompleted, SyncFailed, SyncPartial:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a sync job status change would
// violate the pending -> running -> terminal lifecycle.
var ErrInvalidTransition = errors.New("invalid sync job status transition")

// ValidateTransition checks a status change against the job lifecycle.
func ValidateTransition(from, to SyncStatus) error {
	switch {
	case from == SyncPending && to == SyncRunning:
		return nil
	case from == SyncRunning && to.IsTerminal():
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// SyncJob is the persisted record of one sync attempt's lifecycle and
// outcome. Every sync, successful or not, ends with a terminal job row.
type SyncJob struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type        SyncType            `bson:"sync_type" json:"sync_type"`
	Status      SyncStatus          `bson:"status" json:"status"`
	AgentID     *primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	TriggeredBy string              `bson:"triggered_by,omitempty" json:"triggered_by,omitempty"`

	TotalAgents    int                  `bson:"total_agents" json:"total_agents"`
	AgentsSynced   int                  `bson:"agents_synced" json:"agents_synced"`
	AgentsFailed   int                  `bson:"agents_failed" json:"agents_failed"`
	FailedAgentIDs []primitive.ObjectID `bson:"failed_agent_ids,omitempty" json:"failed_agent_ids,omitempty"`
	APICallsUsed   int                  `bson:"api_calls_used" json:"api_calls_used"`

	StartedAt       *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	DurationSeconds *float64   `bson:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	Error           string     `bson:"error,omitempty" json:"error,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
