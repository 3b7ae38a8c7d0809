package websocket

import (
	"context"
	"time"

	"otomart/pkg/logger"
)

// UnreadCounter is the slice of the unread aggregator the reconciler needs.
type UnreadCounter interface {
	TotalFor(ctx context.Context, userID string) (int, error)
}

// Reconciler is the safety net against missed push events. The same
// operation backs both paths: a periodic tick over all connected users, and
// an explicit SyncUser on (re)connect. Pushing a fresh unread total is
// enough because subscribers treat events as re-fetch triggers, so a
// duplicate sync is harmless and a missed insert event is repaired on the
// next tick.
type Reconciler struct {
	manager  *Manager
	unread   UnreadCounter
	interval time.Duration
}

func NewReconciler(manager *Manager, unread UnreadCounter, interval time.Duration) *Reconciler {
	return &Reconciler{
		manager:  manager,
		unread:   unread,
		interval: interval,
	}
}

// Start runs the periodic reconciliation loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, userID := range r.manager.ConnectedUserIDs() {
					r.SyncUser(ctx, userID)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SyncUser pushes the user's current unread total to all their sessions.
func (r *Reconciler) SyncUser(ctx context.Context, userID string) {
	total, err := r.unread.TotalFor(ctx, userID)
	if err != nil {
		logger.Warn("Reconciler failed to compute unread total for user %s: %v", userID, err)
		return
	}

	r.manager.SendToUser(userID, NewEvent(EventUnreadSync, "", UnreadSyncPayload{TotalUnread: total}))
}
