// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		t := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("applied", n),
			zap.Duration("ping", t.Ping),
			zap.Duration("short", t.Short),
			zap.Duration("medium", t.Medium),
			zap.Duration("long", t.Long))
	}

	if deps.NotificationPrune != nil {
		deps.NotificationPrune.Start()
	}
	return nil
}
