// internal/app/features/notifications/inbox.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type countResponse struct {
	Count int64 `json:"count"`
}

type markReadResponse struct {
	Changed bool `json:"changed"`
}

type markAllResponse struct {
	Updated int64 `json:"updated"`
}

// ServeList handles GET /api/notifications?unread=true&limit=N.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	opt := notificationstore.ListOptions{UnreadOnly: q.Get("unread") == "true"}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			httpjson.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opt.Limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "notification feed")
	defer cancel()
	list, err := h.Store.ListByUser(ctx, userID, opt)
	if err != nil {
		httpjson.Internal(w, h.Log, "list notifications failed", err, zap.String("user_id", userID.Hex()))
		return
	}
	httpjson.OK(w, list)
}

// ServeUnreadCount handles GET /api/notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	n, err := h.Store.CountUnread(ctx, userID)
	if err != nil {
		httpjson.Internal(w, h.Log, "count unread failed", err, zap.String("user_id", userID.Hex()))
		return
	}
	httpjson.OK(w, countResponse{Count: n})
}

// HandleMarkRead handles POST /api/notifications/{id}/read.
// Marking an already-read notification succeeds with changed=false.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := httpjson.ObjectIDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	changed, err := h.Store.MarkRead(ctx, userID, id)
	if errors.Is(err, notificationstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "mark read failed", err,
			zap.String("user_id", userID.Hex()),
			zap.String("notification_id", id.Hex()))
		return
	}
	httpjson.OK(w, markReadResponse{Changed: changed})
}

// HandleMarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "mark all notifications read")
	defer cancel()
	n, err := h.Store.MarkAllRead(ctx, userID)
	if err != nil {
		httpjson.Internal(w, h.Log, "mark all read failed", err, zap.String("user_id", userID.Hex()))
		return
	}
	httpjson.OK(w, markAllResponse{Updated: n})
}
