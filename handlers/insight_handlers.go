package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"aiservice/models"
)

// InsightReader provides the aggregated forecast data the AI summary is
// grounded on.
type InsightReader interface {
	ForecastSummary(ctx context.Context) (models.ForecastSummary, error)
}

// InsightHandler turns the stored forecasts into a human-readable analysis
// using the Gemini API.
type InsightHandler struct {
	reader InsightReader
	apiKey string
	log    zerolog.Logger
}

func NewInsightHandler(reader InsightReader, apiKey string, log zerolog.Logger) *InsightHandler {
	return &InsightHandler{
		reader: reader,
		apiKey: apiKey,
		log:    log.With().Str("component", "handlers.insights").Logger(),
	}
}

// HandleGenerateSummary generates a natural-language summary of the latest
// forecast results.
// POST /api/v1/insights/summary
func (h *InsightHandler) HandleGenerateSummary(c *fiber.Ctx) error {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
	}
	if body.Prompt == "" {
		body.Prompt = "Summarize the current inventory outlook."
	}

	if h.apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "GEMINI_API_KEY is not configured",
		})
	}

	summary, err := h.reader.ForecastSummary(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to aggregate forecast data")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch forecast data"})
	}

	analysis, err := h.generateAnalysis(c.Context(), body.Prompt, summary)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to generate analysis")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "analysis": analysis})
}

// generateAnalysis asks Gemini for a concise write-up of the forecast data.
func (h *InsightHandler) generateAnalysis(ctx context.Context, prompt string, summary models.ForecastSummary) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(h.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create AI client: %w", err)
	}
	defer client.Close()

	jsonData, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to serialize forecast data: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	analysisPrompt := fmt.Sprintf(
		`You are a helpful AI assistant for an inventory management team. The user asked: "%s". Based on the following demand forecast results (trend counts and products projected to run out of stock), provide a concise and helpful analysis:

		Data: %s`,
		prompt,
		string(jsonData),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(analysisPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI model returned an empty response")
	}

	return fmt.Sprint(resp.Candidates[0].Content.Parts[0]), nil
}
