package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecomarket-assistant/internal/agent"
	"github.com/spec-kit/ecomarket-assistant/internal/api/dto"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// ChatHandler exposes the conversational turn endpoint.
type ChatHandler struct {
	coordinator *agent.Coordinator
}

// NewChatHandler constructs handler.
func NewChatHandler(coordinator *agent.Coordinator) *ChatHandler {
	return &ChatHandler{coordinator: coordinator}
}

// Handle processes POST /chat.
func (h *ChatHandler) Handle(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInputMalformed("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewInputMalformed("message is required", nil)
	}

	result := h.coordinator.HandleTurn(c.UserContext(), req.SessionID, req.Message)

	return c.JSON(dto.ChatResponse{
		Reply:     result.Response,
		SessionID: result.SessionID,
		TraceID:   result.TraceID,
		Intent:    result.Intent,
		ToolsUsed: result.ToolsUsed,
	})
}
