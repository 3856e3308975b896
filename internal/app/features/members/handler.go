// internal/app/features/members/handler.go
package members

import (
	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for company membership management.
// It holds the stores, audit logger and notifier provided by Startup.
type Handler struct {
	Members  *companymemberstore.Store
	Users    *userstore.Store
	Guard    *companypolicy.Guard
	AuditLog *auditlog.Logger
	Notifier *notify.Notifier
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	members := companymemberstore.New(db)
	return &Handler{
		Members:  members,
		Users:    userstore.New(db),
		Guard:    companypolicy.New(companystore.New(db), members),
		AuditLog: audit,
		Notifier: notifier,
		Log:      logger,
	}
}
