// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/hirehub/internal/app/system/ratelimit"
	"github.com/dalemusser/hirehub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// NotificationPrune is started in Startup and stopped in Shutdown.
	// Nil when pruning is disabled.
	NotificationPrune *workers.NotificationPrune

	// RateLimiter guards the internal routes and is stopped in Shutdown.
	// Nil when rate limiting is disabled.
	RateLimiter *ratelimit.Limiter
}
