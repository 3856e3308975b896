// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	billingfeature "github.com/dalemusser/hirehub/internal/app/features/billing"
	companiesfeature "github.com/dalemusser/hirehub/internal/app/features/companies"
	healthfeature "github.com/dalemusser/hirehub/internal/app/features/health"
	identityfeature "github.com/dalemusser/hirehub/internal/app/features/identity"
	membersfeature "github.com/dalemusser/hirehub/internal/app/features/members"
	notificationsfeature "github.com/dalemusser/hirehub/internal/app/features/notifications"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	jobstore "github.com/dalemusser/hirehub/internal/app/store/jobs"
	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/app/store/queries/companyqueries"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Signed-in APIs live under /api and resolve the caller from the session
// cookie. Service-to-service APIs live under /internal and require the
// X-Service-Key header.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Fresh user data on each request, so profile syncs take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	serviceKeys, err := auth.NewServiceKeys(appCfg.ServiceKeyHash, logger)
	if err != nil {
		logger.Error("service key init failed", zap.Error(err))
		return nil, err
	}

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Admin:    appCfg.AuditLogAdmin,
		Billing:  appCfg.AuditLogBilling,
		Identity: appCfg.AuditLogIdentity,
	})
	notifier := notify.New(notificationstore.New(db), logger)

	limited := ratelimit.Middleware(deps.RateLimiter, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.JobsEnabled, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Companies: context, usage, audit history
	companiesHandler := companiesfeature.NewHandler(db, jobSource(appCfg, db), logger)
	r.Mount("/api/companies", companiesfeature.Routes(companiesHandler, sessionMgr))
	r.With(limited).Mount("/internal/companies", companiesfeature.InternalRoutes(companiesHandler, serviceKeys))

	// Membership management
	membersHandler := membersfeature.NewHandler(db, auditLogger, notifier, logger)
	r.Mount("/api/companies/{companyID}/members", membersfeature.Routes(membersHandler, sessionMgr))
	r.With(limited).Mount("/api/invites", membersfeature.InviteRoutes(membersHandler, sessionMgr))

	// Notifications
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))
	r.With(limited).Mount("/internal/notifications", notificationsfeature.InternalRoutes(notificationsHandler, serviceKeys))

	// Billing and identity webhooks (relayed by trusted services)
	billingHandler := billingfeature.NewHandler(db, auditLogger, notifier, logger)
	r.With(limited).Mount("/internal/billing", billingfeature.InternalRoutes(billingHandler, serviceKeys))

	identityHandler := identityfeature.NewHandler(db, auditLogger, logger)
	r.With(limited).Mount("/internal/identity", identityfeature.InternalRoutes(identityHandler, serviceKeys))

	return r, nil
}

// jobSource returns the jobs collection reader, or the explicit empty
// source when job counting is disabled.
func jobSource(appCfg AppConfig, db *mongo.Database) companyqueries.JobSource {
	if !appCfg.JobsEnabled {
		return companyqueries.NoJobs{}
	}
	return jobstore.New(db, appCfg.JobsCollection)
}
