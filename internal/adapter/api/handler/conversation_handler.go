package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"otomart/internal/usecase"
	"otomart/pkg/response"
	"otomart/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type createConversationRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	SellerID  string `json:"seller_id"`
}

// GetOrCreate starts (or returns) the caller's conversation with the
// listing's seller.
func (h *ConversationHandler) GetOrCreate(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	conv, created, err := h.conversationUseCase.GetOrCreate(c.Request().Context(), buyerID, usecase.CreateConversationInput{
		SellerID:  req.SellerID,
		ListingID: req.ListingID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, conv)
	}
	return response.Success(c, conv)
}

// List returns the caller's conversation summaries, newest activity first.
func (h *ConversationHandler) List(c echo.Context) error {
	userID := c.Get("uid").(string)

	summaries, err := h.conversationUseCase.List(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(summaries))

	start := params.Offset
	if start > len(summaries) {
		start = len(summaries)
	}
	end := start + params.PageSize
	if end > len(summaries) {
		end = len(summaries)
	}

	return response.Paginated(c, summaries[start:end], total, params.Page, params.PageSize)
}

// Delete removes a conversation and all its messages.
func (h *ConversationHandler) Delete(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.Delete(c.Request().Context(), conversationID, userID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
