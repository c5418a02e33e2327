package models

import (
	"encoding/json"
	"time"
)

// Trend labels assigned by the analyzer.
const (
	TrendUp     = "uptrend"
	TrendDown   = "downtrend"
	TrendStable = "stable"
)

// Confidence labels assigned by the analyzer.
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// DailyPoint is one calendar day of aggregated sales.
type DailyPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// DailySeries is a dense daily sales series: sorted ascending, one entry per
// calendar day with no gaps, duplicate dates already summed.
type DailySeries []DailyPoint

// ForecastPoint is the model's estimate for a single future day.
type ForecastPoint struct {
	Date  time.Time
	Yhat  float64
	Lower float64
	Upper float64
}

// MarshalJSON keeps the persisted forecast rows in the ds/yhat shape the
// dashboard already reads, with dates trimmed to the calendar day.
func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"ds"`
		Yhat  float64 `json:"yhat"`
		Lower float64 `json:"yhat_lower"`
		Upper float64 `json:"yhat_upper"`
	}{
		Date:  p.Date.Format("2006-01-02"),
		Yhat:  p.Yhat,
		Lower: p.Lower,
		Upper: p.Upper,
	})
}

// FutureForecast holds the forecast horizon: consecutive daily points
// immediately following the last day of the input series.
type FutureForecast []ForecastPoint

// Prediction is the analyzed inventory signal for one product. It is built
// once per batch run and never mutated afterwards.
type Prediction struct {
	Status                 string          `json:"status"`
	StockOutDate           *string         `json:"stock_out_date"`
	PredictedMonthlyDemand int             `json:"predicted_monthly_demand"`
	Trend                  string          `json:"trend"`
	Confidence             string          `json:"confidence"`
	ForecastData           []ForecastPoint `json:"forecast_data"`
}

// BatchStats counts notable outcomes across one batch run.
type BatchStats struct {
	Uptrend   int `json:"uptrend"`
	Downtrend int `json:"downtrend"`
	Critical  int `json:"critical"`
}

// BatchReport summarizes one batch prediction run.
type BatchReport struct {
	Processed int        `json:"processed"`
	Updated   int        `json:"updated"`
	Stats     BatchStats `json:"insights"`
	Message   string     `json:"message"`
}
