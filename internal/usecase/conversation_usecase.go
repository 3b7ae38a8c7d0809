package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	"otomart/internal/infrastructure/ratelimit"
	ws "otomart/internal/infrastructure/websocket"
	"otomart/pkg/errors"
	"otomart/pkg/logger"
)

type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
	listingRepo      repository.ListingRepository
	unread           *UnreadUseCase
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	unread *UnreadUseCase,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
) *ConversationUseCase {
	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		listingRepo:      listingRepo,
		unread:           unread,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
	}
}

type CreateConversationInput struct {
	SellerID  string // optional; defaults to the listing's seller
	ListingID string
}

// ConversationSummary decorates a conversation for list views.
type ConversationSummary struct {
	*entity.Conversation
	Preview      string          `json:"preview"`
	LastActivity string          `json:"last_activity"`
	UnreadCount  int             `json:"unread_count"`
	Listing      *entity.Listing `json:"listing,omitempty"`
	OtherUser    *entity.User    `json:"other_user,omitempty"`
}

// GetOrCreate returns the conversation between the buyer and the listing's
// seller, creating it on first contact. Any number of concurrent callers
// with the same triple get the same conversation; the uniqueness is enforced
// atomically at the repository, not by check-then-insert here.
func (uc *ConversationUseCase) GetOrCreate(ctx context.Context, buyerID string, input CreateConversationInput) (*entity.Conversation, bool, error) {
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, false, err
	}

	sellerID := input.SellerID
	if sellerID == "" {
		sellerID = listing.SellerID
	} else if sellerID != listing.SellerID {
		return nil, false, errors.InvalidOperation("Seller does not own this listing", nil)
	}

	if buyerID == sellerID {
		logger.Warn("GetOrCreate: user %s attempted to start a conversation with themselves", buyerID)
		return nil, false, errors.InvalidOperation("You cannot start a conversation about your own listing", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, false, errors.NotFound("Seller", err)
	}

	conv, created, err := uc.conversationRepo.GetOrCreate(ctx, &entity.Conversation{
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ListingID: input.ListingID,
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		// The limiter charges creations only. Reopening an existing thread
		// never consumes a token, so any number of repeated opens returns
		// the same conversation regardless of quota.
		if allowed, waitTime := uc.rateLimiter.Allow(buyerID, "create_conversation"); !allowed {
			if delErr := uc.conversationRepo.Delete(ctx, conv.ID); delErr != nil {
				logger.Warn("GetOrCreate: failed to roll back conversation %s: %v", conv.ID, delErr)
			}
			logger.Warn("GetOrCreate rate limited: user %s must wait %v", buyerID, waitTime)
			return nil, false, errors.TooManyRequests("Too many new conversations. Please wait before contacting another seller")
		}
		logger.Info("Created conversation %s (buyer=%s seller=%s listing=%s)", conv.ID, buyerID, sellerID, input.ListingID)
	}

	return conv, created, nil
}

// Get returns the conversation after verifying the requester participates
// in it.
func (uc *ConversationUseCase) Get(ctx context.Context, requesterID, conversationID string) (*entity.Conversation, error) {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(requesterID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return conv, nil
}

// List returns the user's conversations as summaries, newest activity
// first. LastMessageAt starts equal to CreatedAt, so empty conversations
// sort by creation time.
func (uc *ConversationUseCase) List(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	conversations, err := uc.conversationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := &ConversationSummary{Conversation: conv}

		if latest, err := uc.messageRepo.LatestByConversation(ctx, conv.ID); err == nil {
			summary.Preview = previewText(latest)
			summary.LastActivity = formatLastActivity(latest.CreatedAt)
		} else {
			if !errors.Is(err, "NOT_FOUND") {
				logger.Warn("List: failed to load latest message for conversation %s: %v", conv.ID, err)
			}
			summary.LastActivity = formatLastActivity(conv.CreatedAt)
		}

		count, err := uc.messageRepo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			logger.Warn("List: failed to count unread for conversation %s: %v", conv.ID, err)
		}
		summary.UnreadCount = count

		if listing, err := uc.listingRepo.GetByID(ctx, conv.ListingID); err == nil {
			summary.Listing = listing
		} else {
			logger.Warn("List: listing %s not found for conversation %s: %v", conv.ListingID, conv.ID, err)
		}

		otherID := conv.OtherParticipant(userID)
		if otherUser, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
			summary.OtherUser = otherUser
		} else {
			logger.Warn("List: user %s not found for conversation %s: %v", otherID, conv.ID, err)
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})

	return summaries, nil
}

// Delete removes the conversation and cascades to all its messages.
// Participant-only; elevated (admin) deletion goes through the same path
// with authorization handled at the boundary.
func (uc *ConversationUseCase) Delete(ctx context.Context, conversationID, requesterID string) error {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(requesterID) {
		return errors.Forbidden("Only a participant can delete this conversation", nil)
	}

	if err := uc.messageRepo.DeleteByConversation(ctx, conversationID); err != nil {
		return err
	}
	if err := uc.conversationRepo.Delete(ctx, conversationID); err != nil {
		return err
	}

	// Refresh the counterpart's badge; their total may have dropped.
	otherID := conv.OtherParticipant(requesterID)
	if total, err := uc.unread.TotalFor(ctx, otherID); err == nil {
		uc.wsManager.SendToUser(otherID, ws.NewEvent(ws.EventUnreadSync, "", ws.UnreadSyncPayload{TotalUnread: total}))
	}

	logger.Info("Conversation %s deleted by %s", conversationID, requesterID)
	return nil
}

func previewText(message *entity.Message) string {
	switch message.Type {
	case entity.MessageTypeImage:
		return "[image]"
	case entity.MessageTypeFile:
		if message.FileName != "" {
			return "[file] " + message.FileName
		}
		return "[file]"
	}

	// Truncate on a rune boundary; byte slicing could split a multi-byte
	// character and emit invalid UTF-8.
	const maxPreview = 80
	if runes := []rune(message.Content); len(runes) > maxPreview {
		return string(runes[:maxPreview]) + "..."
	}
	return message.Content
}

func formatLastActivity(t time.Time) string {
	elapsed := time.Since(t)

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
	return t.Format("02 Jan 2006")
}
