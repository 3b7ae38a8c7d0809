package repository

import (
	"context"
	"time"

	"otomart/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate returns the conversation for conv's (buyer, seller,
	// listing) triple, creating it atomically when absent. The bool reports
	// whether a new row was created. Concurrent callers with the same triple
	// must all observe the same conversation.
	GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error)
	// Touch advances LastMessageAt; it never moves it backwards.
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
