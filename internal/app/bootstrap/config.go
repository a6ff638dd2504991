// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	ratelimitstore "github.com/realtyview/agentpulse/internal/app/store/ratelimit"
	"github.com/realtyview/agentpulse/internal/app/system/syncer"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for AgentPulse.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, admin_api_token, etc.
//   - Environment variables: AGENTPULSE_MONGO_URI, AGENTPULSE_ADMIN_API_TOKEN, etc.
//   - Command-line flags: --mongo_uri, --admin_api_token, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "agentpulse", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "admin_api_token", Default: "", Desc: "Bearer token required on sync trigger endpoints (blank disables them)"},

	{Name: "graph_base_url", Default: "", Desc: "Graph API base URL override (blank uses production)"},
	{Name: "graph_call_timeout", Default: "15s", Desc: "Per-request deadline for outbound Graph API calls"},

	{Name: "rate_limit_per_hour", Default: ratelimitstore.DefaultMaxCallsPerHour, Desc: "Hourly Graph API call ceiling"},
	{Name: "batch_pacing", Default: "1s", Desc: "Delay between agents during a batch sync"},

	{Name: "cors_origins", Default: "http://localhost:3000", Desc: "Comma-separated allowed CORS origins for the dashboard"},

	{Name: "demo_seed", Default: false, Desc: "Seed mock agents and metrics when the database is empty"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, AGENTPULSE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "AGENTPULSE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AdminAPIToken: appValues.String("admin_api_token"),

		GraphBaseURL:     appValues.String("graph_base_url"),
		GraphCallTimeout: appValues.Duration("graph_call_timeout", timeouts.DefaultGraphCall),

		RateLimitPerHour: appValues.Int("rate_limit_per_hour"),
		BatchPacing:      appValues.Duration("batch_pacing", syncer.DefaultPacing),

		CORSOrigins: appValues.String("cors_origins"),

		DemoSeed: appValues.Bool("demo_seed"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// AgentPulse validates the MongoDB URI format to catch configuration errors
// early, and refuses to start in prod with the sync triggers unprotected.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.RateLimitPerHour <= 0 {
		return fmt.Errorf("rate_limit_per_hour must be positive, got %d", appCfg.RateLimitPerHour)
	}
	if appCfg.BatchPacing < 0 {
		return fmt.Errorf("batch_pacing must not be negative")
	}
	if appCfg.GraphCallTimeout <= 0 {
		return fmt.Errorf("graph_call_timeout must be positive")
	}
	if appCfg.BatchPacing > time.Minute {
		logger.Warn("batch_pacing is unusually large; batch syncs will be slow",
			zap.Duration("batch_pacing", appCfg.BatchPacing))
	}

	if coreCfg.Env == "prod" && appCfg.AdminAPIToken == "" {
		return fmt.Errorf("admin_api_token is required in prod; sync triggers must not run unprotected")
	}

	return nil
}
