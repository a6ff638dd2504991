// Package demodata seeds a fresh database with mock agents and a month of
// plausible daily metrics so the dashboard has something to show before any
// real platform credentials are configured.
package demodata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const historyDays = 30

// seedAgent describes one mock agent; empty platform flags leave it
// disconnected so the roster exercises every connection state.
type seedAgent struct {
	name      string
	facebook  bool
	instagram bool
}

var seedAgents = []seedAgent{
	{"Maria Santos", true, true},
	{"James Okafor", true, true},
	{"Linda Tran", true, false},
	{"Robert Feldman", false, true},
	{"Aisha Khalil", true, true},
	{"Tom Brennan", false, false},
}

// Seed populates mock agents and metric history. It is a no-op when any
// agents already exist, so it is safe to run at every startup.
func Seed(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	agents := agentstore.New(db)
	metrics := metricstore.New(db)

	n, err := agents.Count(ctx)
	if err != nil {
		return fmt.Errorf("demo seed precheck: %w", err)
	}
	if n > 0 {
		logger.Debug("demo seed skipped, agents exist", zap.Int64("count", n))
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, sa := range seedAgents {
		a := models.Agent{
			FullName: sa.name,
			Email:    uuid.NewString()[:8] + "@demo.realtyview.example",
		}
		if sa.facebook {
			pageID := uuid.NewString()
			token := "demo-fb-" + uuid.NewString()
			a.FacebookPageID = &pageID
			a.FacebookToken = &token
		}
		if sa.instagram {
			accountID := uuid.NewString()
			token := "demo-ig-" + uuid.NewString()
			a.InstagramAccountID = &accountID
			a.InstagramToken = &token
		}

		created, err := agents.Create(ctx, a)
		if err != nil {
			return fmt.Errorf("demo seed agent %q: %w", sa.name, err)
		}

		if err := seedHistory(ctx, metrics, created, rng); err != nil {
			return err
		}
	}

	logger.Info("demo data seeded",
		zap.Int("agents", len(seedAgents)),
		zap.Int("history_days", historyDays))
	return nil
}

// seedHistory writes a gently trending series per connected platform.
func seedHistory(ctx context.Context, metrics *metricstore.Store, a models.Agent, rng *rand.Rand) error {
	if !a.IsConnected() {
		return nil
	}

	fbFollowers := 800 + rng.Intn(2000)
	igFollowers := 500 + rng.Intn(1500)
	now := time.Now().UTC()

	for d := historyDays - 1; d >= 0; d-- {
		m := models.DailyMetrics{
			AgentID:    a.ID,
			MetricDate: now.AddDate(0, 0, -d),
		}
		if a.HasFacebook() {
			fbFollowers += rng.Intn(15)
			m.FacebookFollowers = fbFollowers
			m.FacebookImpressions = 200 + rng.Intn(800)
			m.FacebookReach = 100 + rng.Intn(400)
			m.FacebookEngagement = 20 + rng.Intn(120)
			m.FacebookPosts = rng.Intn(4)
		}
		if a.HasInstagram() {
			igFollowers += rng.Intn(12)
			m.InstagramFollowers = igFollowers
			m.InstagramImpressions = 150 + rng.Intn(600)
			m.InstagramReach = 80 + rng.Intn(300)
			m.InstagramEngagement = 15 + rng.Intn(100)
			m.InstagramMedia = rng.Intn(3)
		}

		if err := metrics.Upsert(ctx, m); err != nil {
			return fmt.Errorf("demo seed metrics for %q: %w", a.FullName, err)
		}
	}
	return nil
}
