package handler

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/usecase"
	"otomart/pkg/response"
)

type UnreadHandler struct {
	unreadUseCase *usecase.UnreadUseCase
}

func NewUnreadHandler(unreadUseCase *usecase.UnreadUseCase) *UnreadHandler {
	return &UnreadHandler{
		unreadUseCase: unreadUseCase,
	}
}

// Count returns the caller's unread count for one conversation.
func (h *UnreadHandler) Count(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	count, err := h.unreadUseCase.CountFor(c.Request().Context(), conversationID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"conversation_id": conversationID,
		"unread_count":    count,
	})
}

// Total returns the caller's unread count across all conversations, for the
// global badge.
func (h *UnreadHandler) Total(c echo.Context) error {
	userID := c.Get("uid").(string)

	total, err := h.unreadUseCase.TotalFor(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"total_unread": total,
	})
}
