package forecaster

import (
	"strconv"
	"time"

	"aiservice/models"
)

// MinDailyPoints is the minimum number of daily entries a series needs
// before it is worth fitting a model on. Anything sparser is rejected to
// keep the model from overfitting.
const MinDailyPoints = 10

// Field aliases used by the various history producers.
var (
	dateAliases     = []string{"timestamp", "date", "createdAt"}
	quantityAliases = []string{"quantity_value", "sales", "quantity_sold"}
)

var dateFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize cleans a raw sales history into a dense daily series: alias
// field names are resolved, quantities coerced to numbers, duplicate dates
// summed, and missing days filled with zero across the observed span.
// It reports ok=false when fewer than MinDailyPoints daily entries remain;
// that is a rejection, not an error.
func Normalize(history []models.RawObservation) (models.DailySeries, bool) {
	totals := make(map[time.Time]float64)
	for _, obs := range history {
		day, ok := observationDate(obs)
		if !ok {
			// A row without a usable date carries no signal at all.
			continue
		}
		totals[day] += observationQuantity(obs)
	}

	if len(totals) == 0 {
		return nil, false
	}

	var first, last time.Time
	for day := range totals {
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	series := make(models.DailySeries, 0, len(totals))
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		series = append(series, models.DailyPoint{Date: day, Quantity: totals[day]})
	}

	if len(series) < MinDailyPoints {
		return nil, false
	}
	return series, true
}

// observationDate resolves the timestamp field by alias and truncates it to
// the calendar day in UTC.
func observationDate(obs models.RawObservation) (time.Time, bool) {
	for _, key := range dateAliases {
		raw, present := obs[key]
		if !present {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		for _, format := range dateFormats {
			if t, err := time.Parse(format, s); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// observationQuantity resolves the quantity field by alias. A missing or
// malformed quantity becomes 0 rather than dropping the row, so the date
// still counts towards the series.
func observationQuantity(obs models.RawObservation) float64 {
	for _, key := range quantityAliases {
		raw, present := obs[key]
		if !present {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			return 0
		default:
			return 0
		}
	}
	return 0
}
