// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/realtyview/agentpulse/internal/app/system/demodata"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// the configured timeout overrides and, in demo mode, seeds mock data.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(0, 0, 0, appCfg.GraphCallTimeout)

	if appCfg.DemoSeed {
		if err := demodata.Seed(ctx, deps.MongoDatabase, logger); err != nil {
			return err
		}
	}
	return nil
}
