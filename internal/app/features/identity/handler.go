// internal/app/features/identity/handler.go
package identity

import (
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler applies identity-provider webhooks (users, organizations,
// memberships) to the local collections.
type Handler struct {
	Users     *userstore.Store
	Companies *companystore.Store
	Members   *companymemberstore.Store
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     userstore.New(db),
		Companies: companystore.New(db),
		Members:   companymemberstore.New(db),
		AuditLog:  audit,
		Log:       logger,
	}
}
