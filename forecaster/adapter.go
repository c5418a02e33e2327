package forecaster

import (
	"fmt"

	"github.com/rs/zerolog"

	"aiservice/models"
)

// ModelAdapter owns the contract with the forecasting model: it drives the
// model with the production configuration, shields callers from panics in
// the fitting code, and shapes the output into the forecast horizon.
type ModelAdapter struct {
	model Forecaster
	cfg   ModelConfig
	log   zerolog.Logger
}

func NewModelAdapter(model Forecaster, log zerolog.Logger) *ModelAdapter {
	return &ModelAdapter{
		model: model,
		cfg:   DefaultModelConfig(),
		log:   log.With().Str("component", "forecaster.adapter").Logger(),
	}
}

// FutureForecast fits the model on the series and returns exactly the
// trailing Horizon rows of its output. Any error or panic during
// fit/predict surfaces as a plain error, never propagates raw.
func (a *ModelAdapter) FutureForecast(series models.DailySeries) (future models.FutureForecast, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("forecasting model panicked")
			future = nil
			err = fmt.Errorf("forecasting model panicked: %v", r)
		}
	}()

	points, err := a.model.Forecast(series, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("model fit/predict failed: %w", err)
	}
	if len(points) < a.cfg.Horizon {
		return nil, fmt.Errorf("model returned %d points, need at least %d", len(points), a.cfg.Horizon)
	}
	return models.FutureForecast(points[len(points)-a.cfg.Horizon:]), nil
}
