package forecaster

import (
	"math"

	"aiservice/models"
)

const (
	trendWindow         = 5
	uptrendThreshold    = 1.1
	downtrendThreshold  = 0.9
	confidenceSpreadCap = 0.2
)

// Analyze turns a future forecast plus the current stock level into a
// structured prediction: projected stock-out date, monthly demand total,
// trend label, and confidence label.
func Analyze(currentQty float64, future models.FutureForecast) models.Prediction {
	prediction := models.Prediction{
		Status:       StatusSuccess,
		Trend:        models.TrendStable,
		Confidence:   models.ConfidenceLow,
		ForecastData: []models.ForecastPoint(future),
	}
	if len(future) == 0 {
		return prediction
	}

	// Walk the horizon once: deplete stock day by day (negative estimates
	// clamp to zero demand, never negative consumption), total the demand,
	// and accumulate the interval spread.
	running := currentQty
	var demand, spreadSum float64
	for _, p := range future {
		daily := math.Max(0, p.Yhat)
		demand += daily
		spreadSum += p.Upper - p.Lower

		if prediction.StockOutDate == nil {
			running -= daily
			if running <= 0 {
				d := p.Date.Format("2006-01-02")
				prediction.StockOutDate = &d
			}
		}
	}
	prediction.PredictedMonthlyDemand = int(math.Round(demand))

	// Trend: compare the mean of the first and last few days. The 10% band
	// is hysteresis so noise does not flap the label.
	window := trendWindow
	if len(future) < window {
		window = len(future)
	}
	var startSum, endSum float64
	for i := 0; i < window; i++ {
		startSum += future[i].Yhat
		endSum += future[len(future)-window+i].Yhat
	}
	start := startSum / float64(window)
	end := endSum / float64(window)
	if end > start*uptrendThreshold {
		prediction.Trend = models.TrendUp
	} else if end < start*downtrendThreshold {
		prediction.Trend = models.TrendDown
	}

	// Confidence is relative to the stock scale: a wide interval on a large
	// stock is still a usable signal.
	avgSpread := spreadSum / float64(len(future))
	if avgSpread < currentQty*confidenceSpreadCap {
		prediction.Confidence = models.ConfidenceHigh
	}

	return prediction
}
