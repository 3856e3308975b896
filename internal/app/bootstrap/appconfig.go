// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries the document store, the session cookie, the internal
// service key, the optional jobs collection, audit destinations,
// notification retention and request rate limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: hirehub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// ServiceKeyHash is the bcrypt hash of the key internal callers present
	// in X-Service-Key. Blank disables every /internal route.
	ServiceKeyHash string

	// Jobs collection (owned by another service)
	JobsEnabled    bool
	JobsCollection string

	// Audit logging destinations: all, db, log, off
	AuditLogAdmin    string
	AuditLogBilling  string
	AuditLogIdentity string

	// Notification pruning
	NotificationRetention     time.Duration // read notifications older than this are deleted
	NotificationPruneInterval time.Duration // how often the prune worker runs

	// Per-IP request limit for /internal and invite acceptance (0 disables)
	RateLimit       int
	RateLimitWindow time.Duration
}
