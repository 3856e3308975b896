// internal/app/system/workers/notificationprune.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ReadPruner deletes read notifications created before a cutoff.
type ReadPruner interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPrune is a background worker that deletes read notifications
// older than the retention window. Unread notifications are kept.
type NotificationPrune struct {
	store     ReadPruner
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewNotificationPrune creates a new prune worker.
//
// Parameters:
//   - store: the notifications store
//   - logger: zap logger for logging
//   - interval: how often to prune (e.g., 1 hour)
//   - retention: how long read notifications are kept (e.g., 30 days)
func NewNotificationPrune(store ReadPruner, logger *zap.Logger, interval, retention time.Duration) *NotificationPrune {
	return &NotificationPrune{
		store:     store,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background prune loop.
func (w *NotificationPrune) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification prune worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once.
func (w *NotificationPrune) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("notification prune worker stopped")
	})
}

func (w *NotificationPrune) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.PruneOnce()
		}
	}
}

// PruneOnce runs a single prune pass and returns the number deleted.
func (w *NotificationPrune) PruneOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	cutoff := w.now().UTC().Add(-w.retention)
	count, err := w.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to prune notifications", zap.Error(err))
		return 0
	}

	if count > 0 {
		w.log.Info("pruned read notifications",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
	}
	return count
}
