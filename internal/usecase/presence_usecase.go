package usecase

import (
	"context"
	"time"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	ws "otomart/internal/infrastructure/websocket"
	"otomart/pkg/logger"
)

// PresenceUseCase tracks self-reported online state. Staleness is computed
// at read time: there is no server-side sweep, so a session that dies
// without a goodbye reads as offline once its last heartbeat ages past the
// staleness window.
type PresenceUseCase struct {
	presenceRepo     repository.PresenceRepository
	conversationRepo repository.ConversationRepository
	wsManager        *ws.Manager
	stalenessWindow  time.Duration
}

func NewPresenceUseCase(
	presenceRepo repository.PresenceRepository,
	conversationRepo repository.ConversationRepository,
	wsManager *ws.Manager,
	stalenessWindow time.Duration,
) *PresenceUseCase {
	return &PresenceUseCase{
		presenceRepo:     presenceRepo,
		conversationRepo: conversationRepo,
		wsManager:        wsManager,
		stalenessWindow:  stalenessWindow,
	}
}

// PresenceStatus is the effective state consumers see, with staleness
// already applied.
type PresenceStatus struct {
	UserID     string    `json:"user_id"`
	IsOnline   bool      `json:"is_online"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Heartbeat upserts the caller's presence row with lastSeenAt=now. Multiple
// sessions of the same user may race; the latest write wins, which is
// harmless because every heartbeat carries a fresh timestamp. A failed
// heartbeat is not retried — the next tick supersedes it.
func (uc *PresenceUseCase) Heartbeat(ctx context.Context, userID string, isOnline bool) error {
	record := &entity.PresenceRecord{
		UserID:     userID,
		IsOnline:   isOnline,
		LastSeenAt: time.Now(),
	}

	if err := uc.presenceRepo.Upsert(ctx, record); err != nil {
		return err
	}

	// Notify sessions currently viewing a conversation with this user.
	conversations, err := uc.conversationRepo.ListByUserID(ctx, userID)
	if err != nil {
		logger.Warn("Heartbeat: failed to list conversations for user %s: %v", userID, err)
		return nil
	}

	for _, conv := range conversations {
		uc.wsManager.SendToConversation(conv.ID, ws.NewEvent(ws.EventPresenceUpserted, conv.ID, record), "")
	}

	return nil
}

// Get returns the user's effective presence. A user with no presence row,
// or whose last heartbeat is older than the staleness window, is offline
// regardless of the stored flag.
func (uc *PresenceUseCase) Get(ctx context.Context, userID string) (*PresenceStatus, error) {
	record, err := uc.presenceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return &PresenceStatus{UserID: userID, IsOnline: false}, nil
		}
		return nil, err
	}

	return &PresenceStatus{
		UserID:     userID,
		IsOnline:   record.IsOnline && time.Since(record.LastSeenAt) < uc.stalenessWindow,
		LastSeenAt: record.LastSeenAt,
	}, nil
}

func (uc *PresenceUseCase) IsOnline(ctx context.Context, userID string) (bool, error) {
	status, err := uc.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.IsOnline, nil
}
