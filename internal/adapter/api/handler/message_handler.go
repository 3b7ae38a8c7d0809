package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"otomart/internal/usecase"
	"otomart/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

type sendMessageRequest struct {
	Content       string `json:"content"`
	Type          string `json:"type" validate:"omitempty,oneof=text image file"`
	AttachmentURL string `json:"attachment_url,omitempty" validate:"omitempty,url"`
	FileName      string `json:"file_name,omitempty"`
}

// Send appends a message to the conversation.
func (h *MessageHandler) Send(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.Send(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
		Type:           req.Type,
		AttachmentURL:  req.AttachmentURL,
		FileName:       req.FileName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// List returns the conversation's full message history in send order.
func (h *MessageHandler) List(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	messages, err := h.messageUseCase.List(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// MarkRead marks the other participant's messages as delivered and read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.messageUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// Clear bulk-removes the conversation's messages.
func (h *MessageHandler) Clear(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.messageUseCase.Clear(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
