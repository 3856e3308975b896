// internal/app/features/billing/handler.go
package billing

import (
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/plansync"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler receives plan updates from the billing provider's webhook relay.
type Handler struct {
	Sync *plansync.Synchronizer
	Log  *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Sync: plansync.New(companystore.New(db), companymemberstore.New(db), audit, notifier, logger),
		Log:  logger,
	}
}
