package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// --- Custom JSON Type for database/sql ---

// JSONB allows storing JSON data in a PostgreSQL jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported source type for JSONB scan")
	}
}

// --- Core Models ---

// RawObservation is a single uncleaned history entry as stored on a product.
// Field names vary by producer (date/createdAt for the timestamp,
// sales/quantity_sold for the quantity), so it stays a loose map until the
// normalizer shapes it.
type RawObservation map[string]interface{}

// ProductRecord is the projection of a product row consumed by the pipeline.
type ProductRecord struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Quantity float64          `json:"quantity"`
	Category *string          `json:"category,omitempty"`
	History  []RawObservation `json:"history"`
}

// ProductSummary is the read-side view of a product with its stored forecast.
type ProductSummary struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Category     *string    `json:"category,omitempty"`
	AIForecast   JSONB      `json:"ai_forecast,omitempty"`
	LastAnalyzed *time.Time `json:"last_analyzed,omitempty"`
}

// ProductForecast is the stored forecast for a single product.
type ProductForecast struct {
	ProductID    string     `json:"product_id"`
	Name         string     `json:"name"`
	AIForecast   JSONB      `json:"ai_forecast,omitempty"`
	LastAnalyzed *time.Time `json:"last_analyzed,omitempty"`
}

// PredictionUpdate pairs a product with the prediction to persist on it.
type PredictionUpdate struct {
	ProductID  string     `json:"product_id"`
	Prediction Prediction `json:"prediction"`
}

// BulkWriteResult reports the outcome of a best-effort bulk persistence pass.
type BulkWriteResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
	Failed   int64 `json:"failed"`
}

// ForecastSummary aggregates the stored forecasts across all products.
// It feeds the AI insight endpoint.
type ForecastSummary struct {
	Analyzed         int64             `json:"analyzed"`
	Uptrend          int64             `json:"uptrend"`
	Downtrend        int64             `json:"downtrend"`
	Stable           int64             `json:"stable"`
	Critical         int64             `json:"critical"`
	CriticalProducts []CriticalProduct `json:"critical_products"`
}

// CriticalProduct is a product projected to run out of stock within the
// forecast horizon.
type CriticalProduct struct {
	Name         string `json:"name"`
	StockOutDate string `json:"stock_out_date"`
}
