package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"aiservice/models"
	"aiservice/store"
	"aiservice/utils"
)

// ProductReader is the read-side surface over the product catalog.
type ProductReader interface {
	ListProducts(ctx context.Context, limit, offset int) ([]models.ProductSummary, error)
	CountProducts(ctx context.Context) (int, error)
	GetForecast(ctx context.Context, productID string) (models.ProductForecast, error)
}

// ProductHandler serves products together with their stored forecasts.
type ProductHandler struct {
	reader ProductReader
	log    zerolog.Logger
}

func NewProductHandler(reader ProductReader, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		reader: reader,
		log:    log.With().Str("component", "handlers.products").Logger(),
	}
}

// HandleListProducts returns a page of products with their forecasts.
// GET /api/v1/products
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("pageSize", 50)
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	total, err := h.reader.CountProducts(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to retrieve products",
		})
	}

	products, err := h.reader.ListProducts(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to retrieve products",
		})
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"data":       products,
		"pagination": utils.CreatePagination(total, page, pageSize),
	})
}

// HandleGetProductForecast returns the stored forecast for one product.
// GET /api/v1/products/:productId/forecast
func (h *ProductHandler) HandleGetProductForecast(c *fiber.Ctx) error {
	productID := c.Params("productId")

	forecast, err := h.reader.GetForecast(c.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  "error",
				"message": "Product not found",
			})
		}
		h.log.Error().Err(err).Str("product_id", productID).Msg("failed to fetch forecast")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to retrieve forecast",
		})
	}

	if forecast.AIForecast == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "No forecast available for this product yet",
		})
	}

	return c.JSON(fiber.Map{"status": "success", "data": forecast})
}
