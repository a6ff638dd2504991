// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	agentsfeature "github.com/realtyview/agentpulse/internal/app/features/agents"
	dashboardfeature "github.com/realtyview/agentpulse/internal/app/features/dashboard"
	healthfeature "github.com/realtyview/agentpulse/internal/app/features/health"
	syncfeature "github.com/realtyview/agentpulse/internal/app/features/sync"
	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	ratelimitstore "github.com/realtyview/agentpulse/internal/app/store/ratelimit"
	syncjobstore "github.com/realtyview/agentpulse/internal/app/store/syncjobs"
	"github.com/realtyview/agentpulse/internal/app/system/apikey"
	"github.com/realtyview/agentpulse/internal/app/system/graphapi"
	"github.com/realtyview/agentpulse/internal/app/system/ratelimit"
	"github.com/realtyview/agentpulse/internal/app/system/syncer"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. AgentPulse builds the store layer, the
// Graph API client, and the sync orchestration on top, then mounts the API
// feature routers. The sync trigger endpoints are bearer-token protected;
// everything else is read-only for the dashboard frontend.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	agents := agentstore.New(db)
	metrics := metricstore.New(db)
	jobs := syncjobstore.New(db)
	rate := ratelimitstore.New(db, appCfg.RateLimitPerHour)

	graph := graphapi.NewClient(appCfg.GraphBaseURL, logger)
	agentSyncer := syncer.NewAgentSyncer(agents, metrics, graph, logger)
	batch := syncer.NewBatch(agents, agentSyncer, appCfg.BatchPacing, logger)

	// Trigger endpoints carry two guards: the bearer token, and a per-IP
	// request limiter so a misbehaving client cannot hammer the cooldown
	// checks themselves.
	adminOnly := apikey.Require(appCfg.AdminAPIToken, logger)
	triggerLimiter := ratelimit.New(30, time.Minute)
	guardTriggers := func(next http.Handler) http.Handler {
		return triggerLimiter.Middleware(adminOnly(next))
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: splitOrigins(appCfg.CORSOrigins),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	syncHandler := syncfeature.NewHandler(jobs, rate, agents, agentSyncer, batch, logger)
	r.Mount("/api/sync", syncfeature.Routes(syncHandler, guardTriggers))

	agentsHandler := agentsfeature.NewHandler(agents, metrics, logger)
	r.Mount("/api/agents", agentsfeature.Routes(agentsHandler))

	dashboardHandler := dashboardfeature.NewHandler(db, metrics, jobs, logger)
	r.Mount("/api/dashboard", dashboardfeature.Routes(dashboardHandler))

	return r, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
