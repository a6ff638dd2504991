// internal/domain/models/agent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agent represents a real-estate salesperson whose social-media performance
// is tracked by the dashboard.
//
// Facebook and Instagram credentials are nullable: an agent may have
// connected neither, one, or both platforms. Access tokens are never
// serialized to JSON.
type Agent struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"`
	PhotoURL string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	FacebookPageID     *string `bson:"facebook_page_id,omitempty" json:"facebook_page_id,omitempty"`
	FacebookToken      *string `bson:"facebook_token,omitempty" json:"-"`
	InstagramAccountID *string `bson:"instagram_account_id,omitempty" json:"instagram_account_id,omitempty"`
	InstagramToken     *string `bson:"instagram_token,omitempty" json:"-"`

	// Sync health, updated after every sync attempt regardless of trigger.
	LastSuccessfulSync  *time.Time `bson:"last_successful_sync,omitempty" json:"last_successful_sync,omitempty"`
	LastSyncAttempt     *time.Time `bson:"last_sync_attempt,omitempty" json:"last_sync_attempt,omitempty"`
	ConsecutiveFailures int        `bson:"consecutive_failures" json:"consecutive_failures"`
	LastSyncStatus      string     `bson:"last_sync_status,omitempty" json:"last_sync_status,omitempty"`
	LastSyncError       string     `bson:"last_sync_error,omitempty" json:"last_sync_error,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasFacebook reports whether the agent has a usable Facebook connection.
func (a *Agent) HasFacebook() bool {
	return a.FacebookPageID != nil && *a.FacebookPageID != "" &&
		a.FacebookToken != nil && *a.FacebookToken != ""
}

// HasInstagram reports whether the agent has a usable Instagram connection.
func (a *Agent) HasInstagram() bool {
	return a.InstagramAccountID != nil && *a.InstagramAccountID != "" &&
		a.InstagramToken != nil && *a.InstagramToken != ""
}

// IsConnected reports whether at least one platform is connected. Agents
// with no connection are excluded from batch syncs and fail single syncs
// with a specific "not connected" error.
func (a *Agent) IsConnected() bool {
	return a.HasFacebook() || a.HasInstagram()
}
