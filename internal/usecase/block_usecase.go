package usecase

import (
	"context"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	ws "otomart/internal/infrastructure/websocket"
	"otomart/pkg/errors"
	"otomart/pkg/logger"
)

type BlockUseCase struct {
	blockRepo repository.BlockRepository
	userRepo  repository.UserRepository
	wsManager *ws.Manager
}

func NewBlockUseCase(
	blockRepo repository.BlockRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
) *BlockUseCase {
	return &BlockUseCase{
		blockRepo: blockRepo,
		userRepo:  userRepo,
		wsManager: wsManager,
	}
}

// BlockStatus tells the caller whether messaging is disabled and who owns
// the block, so the UI can offer "unblock" only to the blocker.
type BlockStatus struct {
	Blocked   bool   `json:"blocked"`
	BlockerID string `json:"blocker_id,omitempty"`
}

// Block records that blocker no longer wants contact with blocked.
// Idempotent: repeating the call leaves exactly one relation.
func (uc *BlockUseCase) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return errors.InvalidOperation("You cannot block yourself", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, blockedID); err != nil {
		return errors.NotFound("User to block", err)
	}

	if err := uc.blockRepo.Upsert(ctx, &entity.BlockRelation{
		BlockerID: blockerID,
		BlockedID: blockedID,
	}); err != nil {
		return err
	}

	logger.Info("User %s blocked user %s", blockerID, blockedID)
	uc.publishChange(blockerID, blockedID, true)
	return nil
}

// Unblock removes only the relation owned by blockerID. A block in the
// other direction, if any, stays in place.
func (uc *BlockUseCase) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if err := uc.blockRepo.Delete(ctx, blockerID, blockedID); err != nil {
		return err
	}

	logger.Info("User %s unblocked user %s", blockerID, blockedID)
	uc.publishChange(blockerID, blockedID, false)
	return nil
}

// Status reports whether a block exists in either direction between the two
// users.
func (uc *BlockUseCase) Status(ctx context.Context, userA, userB string) (*BlockStatus, error) {
	relation, err := uc.blockRepo.GetBetween(ctx, userA, userB)
	if err != nil {
		if isNotFound(err) {
			return &BlockStatus{Blocked: false}, nil
		}
		return nil, err
	}

	return &BlockStatus{Blocked: true, BlockerID: relation.BlockerID}, nil
}

func (uc *BlockUseCase) publishChange(blockerID, blockedID string, blocked bool) {
	event := ws.NewEvent(ws.EventBlockChanged, "", ws.BlockChangedPayload{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Blocked:   blocked,
	})

	// Both sides need to refresh their composer state.
	uc.wsManager.SendToUser(blockerID, event)
	uc.wsManager.SendToUser(blockedID, event)
}

func isNotFound(err error) bool {
	return errors.Is(err, "NOT_FOUND")
}
