package routes

import (
	"github.com/gofiber/fiber/v2"

	"aiservice/handlers"
)

// Deps holds the constructed handlers the routes dispatch to.
type Deps struct {
	Predict  *handlers.PredictHandler
	Products *handlers.ProductHandler
	Insights *handlers.InsightHandler
}

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, d *Deps) {
	// Health check and the batch trigger keep their legacy paths; the
	// callers of this service depend on them.
	app.Get("/", d.Predict.HandleHealthCheck)
	app.Post("/predict/batch", d.Predict.HandleRunBatchPrediction)

	api := app.Group("/api/v1")

	products := api.Group("/products")
	products.Get("/", d.Products.HandleListProducts)
	products.Get("/:productId/forecast", d.Products.HandleGetProductForecast)

	insights := api.Group("/insights")
	insights.Post("/summary", d.Insights.HandleGenerateSummary)
}
