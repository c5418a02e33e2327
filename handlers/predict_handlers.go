package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"aiservice/models"
)

// BatchRunner triggers one batch prediction run.
type BatchRunner interface {
	RunBatch(ctx context.Context, limit int) (models.BatchReport, error)
}

// PredictHandler exposes the batch prediction pipeline over HTTP.
type PredictHandler struct {
	runner       BatchRunner
	defaultLimit int
	log          zerolog.Logger
}

func NewPredictHandler(runner BatchRunner, defaultLimit int, log zerolog.Logger) *PredictHandler {
	return &PredictHandler{
		runner:       runner,
		defaultLimit: defaultLimit,
		log:          log.With().Str("component", "handlers.predict").Logger(),
	}
}

// HandleHealthCheck reports service liveness.
// GET /
func (h *PredictHandler) HandleHealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "online",
		"service": "Inventory AI Brain",
		"version": "2.0",
	})
}

// HandleRunBatchPrediction fetches a bounded batch of products, generates
// forecasts for each, and writes the results back in bulk.
// POST /predict/batch
func (h *PredictHandler) HandleRunBatchPrediction(c *fiber.Ctx) error {
	limit := h.defaultLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if len(c.Body()) > 0 {
		var body struct {
			Limit int `json:"limit"`
		}
		if err := c.BodyParser(&body); err == nil && body.Limit > 0 {
			limit = body.Limit
		}
	}

	h.log.Info().Int("limit", limit).Msg("🚀 Starting batch prediction job")

	report, err := h.runner.RunBatch(c.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("batch job failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if report.Processed == 0 {
		return c.JSON(fiber.Map{"message": report.Message})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"processed": report.Processed,
		"updated":   report.Updated,
		"insights":  report.Stats,
		"message":   report.Message,
	})
}
