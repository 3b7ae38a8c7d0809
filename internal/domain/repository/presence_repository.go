package repository

import (
	"context"

	"otomart/internal/domain/entity"
)

type PresenceRepository interface {
	// Upsert writes the record keyed by UserID. Sessions of the same user
	// may race; last write wins.
	Upsert(ctx context.Context, record *entity.PresenceRecord) error
	GetByUserID(ctx context.Context, userID string) (*entity.PresenceRecord, error)
}
