// Package syncer implements the metrics synchronization core: fetching an
// agent's Facebook/Instagram counters, persisting the combined daily record,
// and orchestrating batch runs across all eligible agents.
package syncer

import (
	"context"
	"strings"
	"time"

	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	"github.com/realtyview/agentpulse/internal/app/system/graphapi"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GraphClient is the slice of the Graph API the syncer depends on.
// *graphapi.Client satisfies it; tests substitute fakes.
type GraphClient interface {
	GetPageMetrics(ctx context.Context, pageID, token string, since, until time.Time) (*graphapi.PageMetrics, error)
	GetPagePosts(ctx context.Context, pageID, token string, limit int) ([]graphapi.PagePost, error)
	GetInstagramMetrics(ctx context.Context, accountID, token string, since, until time.Time) (*graphapi.InstagramMetrics, error)
	GetInstagramMedia(ctx context.Context, accountID, token string, limit int) ([]graphapi.InstagramMedia, error)
}

const (
	// contentFetchLimit caps the recent posts/media fetched per platform.
	contentFetchLimit = 25
	// metricsLookback is the fixed query window for insight counters.
	metricsLookback = 24 * time.Hour
)

// NotConnectedError is the distinct failure text for agents with no platform
// credentials at all; it must never be conflated with upstream errors.
const NotConnectedError = "no Facebook or Instagram accounts connected"

// AgentSyncer synchronizes exactly one agent's metrics at a time, tolerating
// partial platform failure.
type AgentSyncer struct {
	agents  *agentstore.Store
	metrics *metricstore.Store
	graph   GraphClient
	log     *zap.Logger
}

func NewAgentSyncer(agents *agentstore.Store, metrics *metricstore.Store, graph GraphClient, logger *zap.Logger) *AgentSyncer {
	return &AgentSyncer{agents: agents, metrics: metrics, graph: graph, log: logger}
}

// Result is the outcome of one agent's sync attempt. APICalls is the number
// of Graph API calls actually spent (0-4) regardless of success, so the rate
// limit ledger can reconcile afterwards.
type Result struct {
	AgentID        primitive.ObjectID         `json:"agent_id"`
	Success        bool                       `json:"success"`
	Error          string                     `json:"error,omitempty"`
	Facebook       *graphapi.PageMetrics      `json:"facebook,omitempty"`
	Instagram      *graphapi.InstagramMetrics `json:"instagram,omitempty"`
	FacebookPosts  int                        `json:"facebook_posts"`
	InstagramMedia int                        `json:"instagram_media"`
	APICalls       int                        `json:"api_calls"`
}

// SyncAgent fetches current metrics for one agent from whichever platforms
// are connected, upserts the combined daily record, and updates the agent's
// sync-health fields.
//
// Platform-level failures are captured into the Result and do not abort the
// sibling platform's fetch. Not-found and persistence errors propagate to
// the caller; a sync whose results cannot be recorded has no useful side
// effect. Even when an error is returned, Result.APICalls reflects the calls
// already spent.
func (s *AgentSyncer) SyncAgent(ctx context.Context, agentID primitive.ObjectID) (Result, error) {
	res := Result{AgentID: agentID}

	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return res, err
	}

	now := time.Now().UTC()
	since := now.Add(-metricsLookback)

	var platformErrs []string

	if agent.HasFacebook() {
		fbCtx, cancel := context.WithTimeout(ctx, timeouts.GraphCall())
		metrics, err := s.graph.GetPageMetrics(fbCtx, *agent.FacebookPageID, *agent.FacebookToken, since, now)
		cancel()
		res.APICalls++
		if err != nil {
			platformErrs = append(platformErrs, "facebook: "+err.Error())
			s.log.Warn("facebook metrics fetch failed",
				zap.String("agent_id", agentID.Hex()), zap.Error(err))
		} else {
			res.Facebook = metrics

			// Content fetch is best-effort: headline counters stand on
			// their own even when the post feed is unavailable.
			postCtx, cancel := context.WithTimeout(ctx, timeouts.GraphCall())
			posts, err := s.graph.GetPagePosts(postCtx, *agent.FacebookPageID, *agent.FacebookToken, contentFetchLimit)
			cancel()
			res.APICalls++
			if err != nil {
				platformErrs = append(platformErrs, "facebook posts: "+err.Error())
			} else {
				res.FacebookPosts = len(posts)
			}
		}
	}

	if agent.HasInstagram() {
		igCtx, cancel := context.WithTimeout(ctx, timeouts.GraphCall())
		metrics, err := s.graph.GetInstagramMetrics(igCtx, *agent.InstagramAccountID, *agent.InstagramToken, since, now)
		cancel()
		res.APICalls++
		if err != nil {
			platformErrs = append(platformErrs, "instagram: "+err.Error())
			s.log.Warn("instagram metrics fetch failed",
				zap.String("agent_id", agentID.Hex()), zap.Error(err))
		} else {
			res.Instagram = metrics

			mediaCtx, cancel := context.WithTimeout(ctx, timeouts.GraphCall())
			media, err := s.graph.GetInstagramMedia(mediaCtx, *agent.InstagramAccountID, *agent.InstagramToken, contentFetchLimit)
			cancel()
			res.APICalls++
			if err != nil {
				platformErrs = append(platformErrs, "instagram media: "+err.Error())
			} else {
				res.InstagramMedia = len(media)
			}
		}
	}

	// Neither platform yielded data: a defined failure, not an exception.
	if res.Facebook == nil && res.Instagram == nil {
		if !agent.IsConnected() {
			res.Error = NotConnectedError
		} else {
			res.Error = strings.Join(platformErrs, "; ")
		}
		if err := s.agents.RecordSyncFailure(ctx, agentID, now, res.Error); err != nil {
			return res, err
		}
		return res, nil
	}

	record := models.DailyMetrics{AgentID: agentID, MetricDate: now}
	if res.Facebook != nil {
		record.FacebookFollowers = res.Facebook.FollowersCount
		record.FacebookImpressions = res.Facebook.Impressions
		record.FacebookReach = res.Facebook.EngagedUsers
		record.FacebookEngagement = res.Facebook.PostEngagements
		record.FacebookPosts = res.FacebookPosts
	}
	if res.Instagram != nil {
		record.InstagramFollowers = res.Instagram.FollowersCount
		record.InstagramImpressions = res.Instagram.Impressions
		record.InstagramReach = res.Instagram.Reach
		record.InstagramEngagement = res.Instagram.Interactions
		record.InstagramMedia = res.InstagramMedia
	}

	if err := s.metrics.Upsert(ctx, record); err != nil {
		if ferr := s.agents.RecordSyncFailure(ctx, agentID, now, err.Error()); ferr != nil {
			s.log.Error("failed to record sync failure",
				zap.String("agent_id", agentID.Hex()), zap.Error(ferr))
		}
		return res, err
	}

	res.Success = true
	if len(platformErrs) > 0 {
		// Informational: one platform failed but the sync still counts.
		res.Error = strings.Join(platformErrs, "; ")
	}
	if err := s.agents.RecordSyncSuccess(ctx, agentID, now); err != nil {
		return res, err
	}

	s.log.Info("agent metrics synced",
		zap.String("agent_id", agentID.Hex()),
		zap.Int("api_calls", res.APICalls),
		zap.Bool("facebook", res.Facebook != nil),
		zap.Bool("instagram", res.Instagram != nil))
	return res, nil
}
