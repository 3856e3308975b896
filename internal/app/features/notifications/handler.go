// internal/app/features/notifications/handler.go
package notifications

import (
	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a user's notification inbox and the internal create endpoint.
type Handler struct {
	Store    *notificationstore.Store
	Users    *userstore.Store
	Notifier *notify.Notifier
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	store := notificationstore.New(db)
	return &Handler{
		Store:    store,
		Users:    userstore.New(db),
		Notifier: notify.New(store, logger),
		Log:      logger,
	}
}
