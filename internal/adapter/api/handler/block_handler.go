package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"otomart/internal/usecase"
	"otomart/pkg/response"
)

type BlockHandler struct {
	blockUseCase *usecase.BlockUseCase
}

func NewBlockHandler(blockUseCase *usecase.BlockUseCase) *BlockHandler {
	return &BlockHandler{
		blockUseCase: blockUseCase,
	}
}

type blockRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Block stops messaging between the caller and the given user.
func (h *BlockHandler) Block(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	blockerID := c.Get("uid").(string)

	if err := h.blockUseCase.Block(c.Request().Context(), blockerID, req.UserID); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"message": "User blocked"})
}

// Unblock removes the caller's own block on the given user.
func (h *BlockHandler) Unblock(c echo.Context) error {
	blockedID := c.Param("userId")
	blockerID := c.Get("uid").(string)

	if err := h.blockUseCase.Unblock(c.Request().Context(), blockerID, blockedID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// Status reports whether messaging with the given user is blocked and who
// owns the block.
func (h *BlockHandler) Status(c echo.Context) error {
	otherID := c.Param("userId")
	userID := c.Get("uid").(string)

	status, err := h.blockUseCase.Status(c.Request().Context(), userID, otherID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, status)
}
