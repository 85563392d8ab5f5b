package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecomarket-assistant/internal/api/dto"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// ToolsHandler exposes the structured return tools directly, outside the
// conversational pipeline.
type ToolsHandler struct {
	tools *tickets.Tools
}

// NewToolsHandler constructs handler.
func NewToolsHandler(tools *tickets.Tools) *ToolsHandler {
	return &ToolsHandler{tools: tools}
}

// CheckEligibility handles POST /tools/returns/eligibility.
func (h *ToolsHandler) CheckEligibility(c *fiber.Ctx) error {
	input, err := parseToolInput(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToolResponse{Result: tickets.CheckReturnEligibility(input)})
}

// EstimateRefund handles POST /tools/returns/estimate.
func (h *ToolsHandler) EstimateRefund(c *fiber.Ctx) error {
	input, err := parseToolInput(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToolResponse{Result: tickets.EstimateRefund(input)})
}

// RegisterReturn handles POST /tools/returns/register.
func (h *ToolsHandler) RegisterReturn(c *fiber.Ctx) error {
	input, err := parseToolInput(c)
	if err != nil {
		return err
	}
	result := h.tools.RegisterReturnRequest(c.UserContext(), observability.NewTraceID(), input)
	return c.JSON(dto.ToolResponse{Result: result})
}

func parseToolInput(c *fiber.Ctx) (string, error) {
	var req dto.ToolRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apperrors.NewInputMalformed("invalid payload", nil)
	}
	if strings.TrimSpace(req.Input) == "" {
		return "", apperrors.NewInputMalformed("input is required", nil)
	}
	return req.Input, nil
}
