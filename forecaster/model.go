package forecaster

import (
	"errors"
	"math"
	"time"

	"aiservice/models"
)

// ModelConfig mirrors the knobs the forecasting model is driven with.
type ModelConfig struct {
	DailySeasonality  bool
	WeeklySeasonality bool
	YearlySeasonality bool
	IntervalWidth     float64
	Horizon           int
}

// DefaultModelConfig is the production configuration: weekly and yearly
// seasonality on, daily off, 95% interval, 30-day horizon.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		DailySeasonality:  false,
		WeeklySeasonality: true,
		YearlySeasonality: true,
		IntervalWidth:     0.95,
		Horizon:           30,
	}
}

// Forecaster is the forecasting model collaborator. Given a dense daily
// series it returns fitted-plus-future points covering the historical span
// and cfg.Horizon additional days. Implementations own the fitting
// algorithm entirely.
type Forecaster interface {
	Forecast(series models.DailySeries, cfg ModelConfig) ([]models.ForecastPoint, error)
}

// SeasonalModel is the default in-process model: an ordinary least squares
// trend with additive day-of-week factors, plus month-of-year factors once
// the history spans at least two years. Prediction intervals come from the
// residual standard deviation at the configured width.
type SeasonalModel struct{}

func NewSeasonalModel() *SeasonalModel {
	return &SeasonalModel{}
}

func (m *SeasonalModel) Forecast(series models.DailySeries, cfg ModelConfig) ([]models.ForecastPoint, error) {
	n := len(series)
	if n == 0 {
		return nil, errors.New("cannot fit model on an empty series")
	}

	// Linear trend by least squares over the day index.
	var sumT, sumY, sumTT, sumTY float64
	for i, p := range series {
		t := float64(i)
		sumT += t
		sumY += p.Quantity
		sumTT += t * t
		sumTY += t * p.Quantity
	}
	nf := float64(n)
	var slope float64
	if denom := nf*sumTT - sumT*sumT; denom != 0 {
		slope = (nf*sumTY - sumT*sumY) / denom
	}
	intercept := (sumY - slope*sumT) / nf

	// Weekly seasonality: mean detrended residual per weekday. Needs at
	// least two full weeks to see every weekday twice.
	var weekly [7]float64
	if cfg.WeeklySeasonality && n >= 14 {
		var sums, counts [7]float64
		for i, p := range series {
			wd := p.Date.Weekday()
			sums[wd] += p.Quantity - (intercept + slope*float64(i))
			counts[wd]++
		}
		for wd := range weekly {
			if counts[wd] > 0 {
				weekly[wd] = sums[wd] / counts[wd]
			}
		}
	}

	// Yearly seasonality: mean residual per month, only once the span
	// covers two full cycles.
	var monthly [12]float64
	span := series[n-1].Date.Sub(series[0].Date)
	if cfg.YearlySeasonality && span >= 2*365*24*time.Hour {
		var sums, counts [12]float64
		for i, p := range series {
			mo := int(p.Date.Month()) - 1
			sums[mo] += p.Quantity - (intercept + slope*float64(i)) - weekly[p.Date.Weekday()]
			counts[mo]++
		}
		for mo := range monthly {
			if counts[mo] > 0 {
				monthly[mo] = sums[mo] / counts[mo]
			}
		}
	}

	fitted := func(i int, date time.Time) float64 {
		return intercept + slope*float64(i) + weekly[date.Weekday()] + monthly[int(date.Month())-1]
	}

	var squares float64
	for i, p := range series {
		r := p.Quantity - fitted(i, p.Date)
		squares += r * r
	}
	var sigma float64
	if n > 2 {
		sigma = math.Sqrt(squares / float64(n-2))
	}
	z := math.Sqrt2 * math.Erfinv(cfg.IntervalWidth)
	halfWidth := z * sigma

	out := make([]models.ForecastPoint, 0, n+cfg.Horizon)
	start := series[0].Date
	for i := 0; i < n+cfg.Horizon; i++ {
		date := start.AddDate(0, 0, i)
		y := fitted(i, date)
		out = append(out, models.ForecastPoint{
			Date:  date,
			Yhat:  y,
			Lower: y - halfWidth,
			Upper: y + halfWidth,
		})
	}
	return out, nil
}
