package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aiservice/forecaster"
	"aiservice/models"
	"aiservice/store"
)

// Orchestrator drives one batch prediction run end to end: fetch a bounded
// batch of eligible products, run each through the forecast engine, and
// persist the successful predictions in one bulk write.
type Orchestrator struct {
	store   store.ProductStore
	engine  *forecaster.Engine
	workers int
	log     zerolog.Logger
}

func New(productStore store.ProductStore, engine *forecaster.Engine, workers int, log zerolog.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		store:   productStore,
		engine:  engine,
		workers: workers,
		log:     log.With().Str("component", "pipeline.orchestrator").Logger(),
	}
}

// RunBatch processes up to limit products. Per-product rejections and model
// failures exclude that product from the update list but never abort the
// run; only an infrastructure fault returns an error.
func (o *Orchestrator) RunBatch(ctx context.Context, limit int) (models.BatchReport, error) {
	products, err := o.store.FetchEligible(ctx, limit)
	if err != nil {
		return models.BatchReport{}, fmt.Errorf("failed to fetch product batch: %w", err)
	}
	if len(products) == 0 {
		return models.BatchReport{Message: "No products with sufficient history found."}, nil
	}

	var (
		mu      sync.Mutex
		updates []models.PredictionUpdate
		stats   models.BatchStats
	)

	// Products are independent, so the per-product passes run on a bounded
	// worker pool. The stats are commutative counts and the updates are
	// independent writes, so ordering does not matter.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, product := range products {
		p := product
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome := o.engine.GenerateForecast(p.Quantity, p.History)
			switch outcome.Status {
			case forecaster.StatusSuccess:
				prediction := *outcome.Prediction
				mu.Lock()
				updates = append(updates, models.PredictionUpdate{ProductID: p.ID, Prediction: prediction})
				switch prediction.Trend {
				case models.TrendUp:
					stats.Uptrend++
				case models.TrendDown:
					stats.Downtrend++
				}
				if prediction.StockOutDate != nil {
					stats.Critical++
				}
				mu.Unlock()
			case forecaster.StatusError:
				o.log.Error().
					Str("product_id", p.ID).
					Str("name", p.Name).
					Str("reason", outcome.Message).
					Msg("model failed for product")
			}
			// insufficient_data is expected and normal; the engine already
			// logged it at debug level.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.BatchReport{}, fmt.Errorf("batch run aborted: %w", err)
	}

	if len(updates) > 0 {
		result, err := o.store.BulkPersist(ctx, updates)
		if err != nil {
			// Write failures are tolerated at this boundary; the run still
			// reports the analysis it completed.
			o.log.Error().Err(err).Msg("bulk persistence failed")
		} else if result.Failed > 0 {
			o.log.Warn().
				Int64("modified", result.Modified).
				Int64("failed", result.Failed).
				Msg("bulk persistence completed partially")
		}
	}

	report := models.BatchReport{
		Processed: len(products),
		Updated:   len(updates),
		Stats:     stats,
		Message:   "Batch analysis complete",
	}
	o.log.Info().
		Int("processed", report.Processed).
		Int("updated", report.Updated).
		Int("uptrend", stats.Uptrend).
		Int("downtrend", stats.Downtrend).
		Int("critical", stats.Critical).
		Msg("batch prediction run finished")
	return report, nil
}
