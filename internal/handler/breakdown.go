package handler

import (
	"github.com/gofiber/fiber/v2"

	"scenecraft-backend/internal/breakdown"
)

// BreakdownHandler scene analysis endpoint
type BreakdownHandler struct {
	analyzer *breakdown.Service
}

// NewBreakdownHandler creates the breakdown handler
func NewBreakdownHandler(analyzer *breakdown.Service) *BreakdownHandler {
	return &BreakdownHandler{analyzer: analyzer}
}

// AnalyzeRequest scene text payload
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Analyze breaks a scene description into cinematography elements
func (h *BreakdownHandler) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Text is required",
		})
	}

	analysis, source := h.analyzer.Analyze(c.Context(), req.Text)

	return c.JSON(fiber.Map{
		"success":  true,
		"analysis": analysis,
		"source":   source,
	})
}
