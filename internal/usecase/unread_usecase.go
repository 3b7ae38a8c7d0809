package usecase

import (
	"context"

	"otomart/internal/domain/repository"
	"otomart/pkg/errors"
)

// UnreadUseCase derives unread counters from message store state. It holds
// no state of its own, so independent callers (tabs, the reconciler, the
// badge endpoint) always agree with whatever markRead last committed.
type UnreadUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
}

func NewUnreadUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
) *UnreadUseCase {
	return &UnreadUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// CountFor returns how many messages in the conversation the user has not
// read yet (messages the user sent never count).
func (uc *UnreadUseCase) CountFor(ctx context.Context, conversationID, userID string) (int, error) {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	if !conv.HasParticipant(userID) {
		return 0, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return uc.messageRepo.CountUnread(ctx, conversationID, userID)
}

// TotalFor sums unread counts across all of the user's conversations.
func (uc *UnreadUseCase) TotalFor(ctx context.Context, userID string) (int, error) {
	conversations, err := uc.conversationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, conv := range conversations {
		count, err := uc.messageRepo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return 0, err
		}
		total += count
	}

	return total, nil
}
