// internal/app/features/notifications/create.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strings"

	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// createRequest addresses the recipient by local id or identity-provider id.
type createRequest struct {
	UserID   string            `json:"userId"`
	ClerkID  string            `json:"clerkId"`
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Link     string            `json:"link"`
	Metadata map[string]string `json:"metadata"`
}

// HandleCreate handles POST /internal/notifications.
// Title and message are reduced to plain text before storage.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc := auth.ServiceFrom(r)
	if err := svc.Check(); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	userID, ok := h.resolveRecipient(ctx, w, req)
	if !ok {
		return
	}

	n, err := h.Notifier.Send(ctx, userID, notify.Message{
		Type:     models.NotificationType(strings.TrimSpace(req.Type)),
		Title:    req.Title,
		Message:  req.Message,
		Link:     req.Link,
		Metadata: req.Metadata,
	})
	if errors.Is(err, notificationstore.ErrInvalid) {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "create notification failed", err,
			zap.String("user_id", userID.Hex()),
			zap.String("service", svc.Name()))
		return
	}
	httpjson.Write(w, http.StatusCreated, n)
}

func (h *Handler) resolveRecipient(ctx context.Context, w http.ResponseWriter, req createRequest) (primitive.ObjectID, bool) {
	if req.UserID != "" {
		id, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid userId")
			return primitive.NilObjectID, false
		}
		return id, true
	}
	if req.ClerkID == "" {
		httpjson.Error(w, http.StatusBadRequest, "userId or clerkId is required")
		return primitive.NilObjectID, false
	}
	u, err := h.Users.GetByClerkID(ctx, req.ClerkID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "user not found")
		return primitive.NilObjectID, false
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "resolve notification recipient failed", err, zap.String("clerk_id", req.ClerkID))
		return primitive.NilObjectID, false
	}
	return u.ID, true
}
