// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/app/system/indexes"
	"github.com/dalemusser/hirehub/internal/app/system/ratelimit"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client, verifies it with a ping and builds
// the back-end workers that depend on it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetAppName("hirehub")

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	deps := DBDeps{MongoClient: client, MongoDatabase: db}
	if appCfg.NotificationPruneInterval > 0 {
		deps.NotificationPrune = workers.NewNotificationPrune(
			notificationstore.New(db), logger,
			appCfg.NotificationPruneInterval, appCfg.NotificationRetention)
	}
	if appCfg.RateLimit > 0 {
		deps.RateLimiter = ratelimit.New(appCfg.RateLimit, appCfg.RateLimitWindow)
	}
	return deps, nil
}

// EnsureSchema reconciles the indexes every store relies on, including the
// unique keys that make the upserts idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index reconciliation failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
