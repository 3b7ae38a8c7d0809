package repository

import (
	"context"

	"otomart/internal/domain/entity"
)

type BlockRepository interface {
	// Upsert stores the directional relation, idempotently: repeating a
	// block leaves exactly one row per (blocker, blocked) pair.
	Upsert(ctx context.Context, relation *entity.BlockRelation) error
	// Delete removes exactly the row owned by blockerID.
	Delete(ctx context.Context, blockerID, blockedID string) error
	// GetBetween returns a relation between the two users in either
	// direction, or NOT_FOUND when none exists.
	GetBetween(ctx context.Context, userA, userB string) (*entity.BlockRelation, error)
}
