package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"otomart/internal/usecase"
	"otomart/pkg/response"
)

type PresenceHandler struct {
	presenceUseCase *usecase.PresenceUseCase
}

func NewPresenceHandler(presenceUseCase *usecase.PresenceUseCase) *PresenceHandler {
	return &PresenceHandler{
		presenceUseCase: presenceUseCase,
	}
}

type heartbeatRequest struct {
	IsOnline *bool `json:"is_online" validate:"required"`
}

// Heartbeat upserts the caller's presence. Clients call it on a fixed
// interval, on tab-visibility regain, and with is_online=false on graceful
// disconnect.
func (h *PresenceHandler) Heartbeat(c echo.Context) error {
	var req heartbeatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.presenceUseCase.Heartbeat(c.Request().Context(), userID, *req.IsOnline); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// Get returns a user's effective presence with staleness applied.
func (h *PresenceHandler) Get(c echo.Context) error {
	userID := c.Param("userId")

	status, err := h.presenceUseCase.Get(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, status)
}
