package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"aiservice/config"
	"aiservice/database"
	"aiservice/forecaster"
	"aiservice/handlers"
	"aiservice/logger"
	"aiservice/middleware"
	"aiservice/pipeline"
	"aiservice/routes"
	"aiservice/scheduler"
	"aiservice/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	zl := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Connection retries are bounded; running without a store is fatal.
	pool, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("❌ Could not connect to the database")
	}
	defer pool.Close()

	productStore := store.NewPostgresProductStore(pool, zl)
	engine := forecaster.NewEngine(forecaster.NewSeasonalModel(), zl)
	orchestrator := pipeline.New(productStore, engine, cfg.BatchWorkers, zl)

	if cfg.BatchCron != "" {
		sched, err := scheduler.New(cfg.BatchCron, orchestrator, cfg.BatchLimit, zl)
		if err != nil {
			zl.Fatal().Err(err).Str("spec", cfg.BatchCron).Msg("invalid BATCH_CRON spec")
		}
		sched.Start()
		defer sched.Stop()
	}

	app := fiber.New()
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(zl))

	routes.SetupRoutes(app, &routes.Deps{
		Predict:  handlers.NewPredictHandler(orchestrator, cfg.BatchLimit, zl),
		Products: handlers.NewProductHandler(productStore, zl),
		Insights: handlers.NewInsightHandler(productStore, cfg.GeminiAPIKey, zl),
	})

	zl.Info().Str("port", cfg.Port).Msg("🧠 AI service starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal().Err(err).Msg("server exited")
	}
}
