package forecaster

import (
	"github.com/rs/zerolog"

	"aiservice/models"
)

// Per-product outcome statuses.
const (
	StatusSuccess          = "success"
	StatusInsufficientData = "insufficient_data"
	StatusError            = "error"
)

// Outcome is the tagged result of analyzing one product. Failures stay
// values here; they never cross component boundaries as errors.
type Outcome struct {
	Status     string
	Message    string
	Prediction *models.Prediction
}

// Engine runs the full per-product pass: normalize the raw history, obtain
// the future forecast, analyze depletion and trend.
type Engine struct {
	adapter *ModelAdapter
	log     zerolog.Logger
}

func NewEngine(model Forecaster, log zerolog.Logger) *Engine {
	return &Engine{
		adapter: NewModelAdapter(model, log),
		log:     log.With().Str("component", "forecaster.engine").Logger(),
	}
}

// GenerateForecast produces the inventory prediction for a single product.
func (e *Engine) GenerateForecast(currentQty float64, history []models.RawObservation) Outcome {
	series, ok := Normalize(history)
	if !ok {
		e.log.Debug().Int("observations", len(history)).Msg("skipping: insufficient data points")
		return Outcome{Status: StatusInsufficientData}
	}

	future, err := e.adapter.FutureForecast(series)
	if err != nil {
		return Outcome{Status: StatusError, Message: err.Error()}
	}

	prediction := Analyze(currentQty, future)
	return Outcome{Status: StatusSuccess, Prediction: &prediction}
}
