package repository

import (
	"context"

	"otomart/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByConversation returns the full log ordered by (createdAt, id)
	// ascending.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// LatestByConversation returns the newest message, or NOT_FOUND for an
	// empty conversation.
	LatestByConversation(ctx context.Context, conversationID string) (*entity.Message, error)
	// MarkAllRead flips isRead and isDelivered to true on every message not
	// sent by readerID, and returns the messages whose flags actually
	// changed. Flags are monotonic: rows already read are left untouched,
	// and messages appended after the call starts are not affected.
	MarkAllRead(ctx context.Context, conversationID, readerID string) ([]*entity.Message, error)
	CountUnread(ctx context.Context, conversationID, userID string) (int, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}
