// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session signing key accepted.
const minSessionKeyLen = 32

// bcryptHashRE matches the modular crypt format bcrypt emits ($2a$, $2b$, $2y$).
var bcryptHashRE = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)

// collectionNameRE limits the jobs collection name to plain identifiers.
var collectionNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]{0,119}$`)

// appConfigKeys defines the configuration keys for HireHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: HIREHUB_MONGO_URI, HIREHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hirehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hirehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Internal service authentication
	{Name: "service_key_hash", Default: "", Desc: "bcrypt hash of the X-Service-Key shared with internal services"},

	// Jobs collection
	{Name: "jobs_enabled", Default: true, Desc: "Read job counts from the jobs collection"},
	{Name: "jobs_collection", Default: "jobs", Desc: "Name of the jobs collection"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Membership event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_billing", Default: "all", Desc: "Billing event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_identity", Default: "all", Desc: "Identity sync event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Notifications
	{Name: "notification_retention", Default: "720h", Desc: "How long read notifications are kept"},
	{Name: "notification_prune_interval", Default: "1h", Desc: "How often read notifications are pruned (0 disables)"},

	// Rate limiting
	{Name: "rate_limit", Default: 120, Desc: "Requests per client IP per window on /internal and invite routes (0 disables)"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HIREHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HIREHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		ServiceKeyHash: strings.TrimSpace(appValues.String("service_key_hash")),

		JobsEnabled:    appValues.Bool("jobs_enabled"),
		JobsCollection: strings.TrimSpace(appValues.String("jobs_collection")),

		AuditLogAdmin:    strings.ToLower(appValues.String("audit_log_admin")),
		AuditLogBilling:  strings.ToLower(appValues.String("audit_log_billing")),
		AuditLogIdentity: strings.ToLower(appValues.String("audit_log_identity")),

		NotificationRetention:     appValues.Duration("notification_retention", 30*24*time.Hour),
		NotificationPruneInterval: appValues.Duration("notification_prune_interval", time.Hour),

		RateLimit:       appValues.Int("rate_limit"),
		RateLimitWindow: appValues.Duration("rate_limit_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)", appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
	}
	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}

	if appCfg.ServiceKeyHash == "" {
		logger.Warn("service_key_hash is empty; internal routes will reject every request")
	} else if !bcryptHashRE.MatchString(appCfg.ServiceKeyHash) {
		return fmt.Errorf("service_key_hash is not a bcrypt hash")
	}

	if appCfg.JobsEnabled && !collectionNameRE.MatchString(appCfg.JobsCollection) {
		return fmt.Errorf("invalid jobs_collection %q", appCfg.JobsCollection)
	}

	for key, v := range map[string]string{
		"audit_log_admin":    appCfg.AuditLogAdmin,
		"audit_log_billing":  appCfg.AuditLogBilling,
		"audit_log_identity": appCfg.AuditLogIdentity,
	} {
		if !auditlog.ValidSetting(v) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	if appCfg.NotificationPruneInterval < 0 {
		return fmt.Errorf("notification_prune_interval must not be negative")
	}
	if appCfg.NotificationPruneInterval > 0 && appCfg.NotificationRetention <= 0 {
		return fmt.Errorf("notification_retention must be positive when pruning is enabled")
	}

	if appCfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if appCfg.RateLimit > 0 && appCfg.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive when rate limiting is enabled")
	}

	return nil
}
