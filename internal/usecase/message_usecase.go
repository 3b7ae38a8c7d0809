package usecase

import (
	"context"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	"otomart/internal/infrastructure/ratelimit"
	ws "otomart/internal/infrastructure/websocket"
	"otomart/pkg/errors"
	"otomart/pkg/logger"
)

// MessageUseCase is the append-only message log plus the read/delivered
// flag transitions. Note on delivery state: there is no independent delivery
// acknowledgment — a message becomes delivered and read in one step when the
// recipient opens the conversation. Per-message state is
// sent -> delivered+read, terminal; a failed send never creates a row.
type MessageUseCase struct {
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	blockRepo        repository.BlockRepository
	userRepo         repository.UserRepository
	unread           *UnreadUseCase
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	conversationRepo repository.ConversationRepository,
	blockRepo repository.BlockRepository,
	userRepo repository.UserRepository,
	unread *UnreadUseCase,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		blockRepo:        blockRepo,
		userRepo:         userRepo,
		unread:           unread,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
	}
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	Type           string // "text", "image", "file"
	AttachmentURL  string // image and file messages
	FileName       string // file messages only
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// Send appends a message to the conversation. The sender must be a
// participant and the pair must not be blocked in either direction. A send
// that fails leaves no trace; the caller retries if it cares.
func (uc *MessageUseCase) Send(ctx context.Context, senderID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		logger.Warn("Send rate limited: user %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down")
	}

	conv, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(senderID) {
		logger.Warn("Send: user %s is not a participant in conversation %s", senderID, input.ConversationID)
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	recipientID := conv.OtherParticipant(senderID)

	relation, err := uc.blockRepo.GetBetween(ctx, senderID, recipientID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	if relation != nil {
		logger.Warn("Send blocked: conversation=%s sender=%s blocker=%s", conv.ID, senderID, relation.BlockerID)
		return nil, errors.Forbidden("Messaging is not available between these users", nil)
	}

	if err := validateContent(&input); err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        input.Content,
		Type:           input.Type,
		AttachmentURL:  input.AttachmentURL,
		FileName:       input.FileName,
		IsDelivered:    false,
		IsRead:         false,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("Send: failed to create message in conversation %s: %v", conv.ID, err)
		return nil, err
	}

	if err := uc.conversationRepo.Touch(ctx, conv.ID, message.CreatedAt); err != nil {
		logger.Warn("Send: failed to bump activity on conversation %s: %v", conv.ID, err)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		logger.Warn("Send: sender %s not found: %v", senderID, err)
	}

	response := &MessageResponse{Message: message, Sender: sender}

	// Push to every session viewing this conversation — the sender's other
	// tabs included, so they converge without waiting for the poll — then
	// refresh the recipient's badge wherever they are.
	uc.wsManager.SendToConversation(conv.ID, ws.NewEvent(ws.EventMessageInserted, conv.ID, response), "")

	if total, err := uc.unread.TotalFor(ctx, recipientID); err == nil {
		uc.wsManager.SendToUser(recipientID, ws.NewEvent(ws.EventUnreadSync, "", ws.UnreadSyncPayload{TotalUnread: total}))
	} else {
		logger.Warn("Send: failed to compute unread total for user %s: %v", recipientID, err)
	}

	return response, nil
}

func validateContent(input *SendMessageInput) error {
	if input.Type == "" {
		input.Type = entity.MessageTypeText
	}

	switch input.Type {
	case entity.MessageTypeText:
		if input.Content == "" {
			return errors.InvalidOperation("Message content is required", nil)
		}
	case entity.MessageTypeImage:
		if input.AttachmentURL == "" {
			return errors.InvalidOperation("Image messages require an attachment URL", nil)
		}
	case entity.MessageTypeFile:
		if input.AttachmentURL == "" || input.FileName == "" {
			return errors.InvalidOperation("File messages require a filename and an attachment URL", nil)
		}
	default:
		return errors.InvalidOperation("Unsupported message type", nil)
	}

	return nil
}

// List returns the conversation's full history in (createdAt, id) order.
func (uc *MessageUseCase) List(ctx context.Context, requesterID, conversationID string) ([]*entity.Message, error) {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(requesterID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return uc.messageRepo.ListByConversation(ctx, conversationID)
}

// MarkConversationRead marks every message from the other participant as
// delivered and read. Only messages that exist when the call executes are
// affected; concurrent arrivals stay unread for the next call. Idempotent —
// a second call finds nothing to flip and publishes nothing.
func (uc *MessageUseCase) MarkConversationRead(ctx context.Context, readerID, conversationID string) error {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(readerID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	updated, err := uc.messageRepo.MarkAllRead(ctx, conversationID, readerID)
	if err != nil {
		logger.Error("MarkConversationRead: failed for conversation %s reader %s: %v", conversationID, readerID, err)
		return err
	}

	// One update event per flipped message so the sender's view can move
	// its delivery indicators.
	for _, message := range updated {
		uc.wsManager.SendToConversation(conversationID, ws.NewEvent(ws.EventMessageUpdated, conversationID, message), "")
	}

	if total, err := uc.unread.TotalFor(ctx, readerID); err == nil {
		uc.wsManager.SendToUser(readerID, ws.NewEvent(ws.EventUnreadSync, "", ws.UnreadSyncPayload{TotalUnread: total}))
	}

	return nil
}

// Clear bulk-removes the conversation's messages without deleting the
// conversation itself.
func (uc *MessageUseCase) Clear(ctx context.Context, requesterID, conversationID string) error {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(requesterID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if err := uc.messageRepo.DeleteByConversation(ctx, conversationID); err != nil {
		return err
	}

	logger.Info("Messages cleared in conversation %s by %s", conversationID, requesterID)
	return nil
}
