package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "otomart/internal/infrastructure/websocket"
	"otomart/internal/usecase"
	"otomart/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	wsManager           *ws.Manager
	reconciler          *ws.Reconciler
	conversationUseCase *usecase.ConversationUseCase
	messageUseCase      *usecase.MessageUseCase
	presenceUseCase     *usecase.PresenceUseCase
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	reconciler *ws.Reconciler,
	conversationUseCase *usecase.ConversationUseCase,
	messageUseCase *usecase.MessageUseCase,
	presenceUseCase *usecase.PresenceUseCase,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:           wsManager,
		reconciler:          reconciler,
		conversationUseCase: conversationUseCase,
		messageUseCase:      messageUseCase,
		presenceUseCase:     presenceUseCase,
	}
}

// HandleWebSocket upgrades the request and runs the session's pumps. Each
// connection is its own session: a user with three tabs gets three
// independent subscriptions, each torn down when its socket dies.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := c.Get("uid").(string)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Websocket upgrade failed for user %s: %v", userID, err)
		return err
	}

	client := &ws.Client{
		SessionID: uuid.New().String(),
		UserID:    userID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	// Fresh subscriptions start from current state: push the unread total
	// immediately so a reconnecting client repairs anything it missed.
	h.reconciler.SyncUser(c.Request().Context(), userID)

	go client.WritePump()
	go client.ReadPump(h.wsManager, h.handleClientMessage)

	return nil
}

// handleClientMessage dispatches one inbound frame. The request context is
// long gone by the time frames arrive, so usecase calls run on a background
// context.
func (h *WebSocketHandler) handleClientMessage(client *ws.Client, raw []byte) {
	var msg ws.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.wsManager.SendToClient(client, ws.NewEvent(ws.EventError, "", map[string]string{"message": "Malformed message"}))
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case ws.ClientMessagePing:
		h.wsManager.SendToClient(client, ws.NewEvent(ws.EventPong, "", nil))

	case ws.ClientMessageJoin:
		if msg.ConversationID == "" {
			h.wsManager.SendToClient(client, ws.NewEvent(ws.EventError, "", map[string]string{"message": "conversation_id is required"}))
			return
		}
		if _, err := h.conversationUseCase.Get(ctx, client.UserID, msg.ConversationID); err != nil {
			h.wsManager.SendToClient(client, ws.NewEvent(ws.EventError, msg.ConversationID, map[string]string{"message": "Cannot join this conversation"}))
			return
		}
		h.wsManager.JoinConversation(client, msg.ConversationID)

	case ws.ClientMessageLeave:
		h.wsManager.LeaveConversation(client, msg.ConversationID)

	case ws.ClientMessageMarkRead:
		if err := h.messageUseCase.MarkConversationRead(ctx, client.UserID, msg.ConversationID); err != nil {
			logger.Warn("mark_read via websocket failed for user %s: %v", client.UserID, err)
		}

	case ws.ClientMessageHeartbeat:
		isOnline := true
		if msg.IsOnline != nil {
			isOnline = *msg.IsOnline
		}
		if err := h.presenceUseCase.Heartbeat(ctx, client.UserID, isOnline); err != nil {
			logger.Warn("heartbeat via websocket failed for user %s: %v", client.UserID, err)
		}

	default:
		h.wsManager.SendToClient(client, ws.NewEvent(ws.EventError, "", map[string]string{"message": "Unknown message type: " + msg.Type}))
	}
}
