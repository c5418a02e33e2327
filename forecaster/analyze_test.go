package forecaster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiservice/models"
)

var horizonStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// futureWith builds a 30-day horizon from the given point estimates, with a
// symmetric interval of the given spread around each estimate.
func futureWith(yhats []float64, spread float64) models.FutureForecast {
	future := make(models.FutureForecast, 0, len(yhats))
	for i, y := range yhats {
		future = append(future, models.ForecastPoint{
			Date:  horizonStart.AddDate(0, 0, i),
			Yhat:  y,
			Lower: y - spread/2,
			Upper: y + spread/2,
		})
	}
	return future
}

func flatHorizon(yhat, spread float64) models.FutureForecast {
	yhats := make([]float64, 30)
	for i := range yhats {
		yhats[i] = yhat
	}
	return futureWith(yhats, spread)
}

func TestAnalyzeZeroDemandNeverDepletes(t *testing.T) {
	p := Analyze(50, flatHorizon(0, 0))

	assert.Equal(t, StatusSuccess, p.Status)
	assert.Nil(t, p.StockOutDate)
	assert.Equal(t, 0, p.PredictedMonthlyDemand)
}

func TestAnalyzeZeroStockDepletesOnFirstDay(t *testing.T) {
	p := Analyze(0, flatHorizon(3, 0))

	require.NotNil(t, p.StockOutDate)
	assert.Equal(t, "2024-06-01", *p.StockOutDate)
}

func TestAnalyzeStockOutDate(t *testing.T) {
	// 10 units at 1/day deplete exactly on the tenth forecast day.
	p := Analyze(10, flatHorizon(1, 0))

	require.NotNil(t, p.StockOutDate)
	assert.Equal(t, "2024-06-10", *p.StockOutDate)
	assert.Equal(t, 30, p.PredictedMonthlyDemand)
}

func TestAnalyzeNegativeEstimatesClampToZero(t *testing.T) {
	p := Analyze(5, flatHorizon(-4, 0))

	assert.Nil(t, p.StockOutDate)
	assert.Equal(t, 0, p.PredictedMonthlyDemand)
}

func TestAnalyzeTrendClassification(t *testing.T) {
	cases := []struct {
		name  string
		start float64
		end   float64
		want  string
	}{
		{"uptrend", 10, 12, models.TrendUp},
		{"stable above", 10, 10.5, models.TrendStable},
		{"stable below", 10, 9.5, models.TrendStable},
		{"downtrend", 10, 8, models.TrendDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			yhats := make([]float64, 30)
			for i := range yhats {
				yhats[i] = tc.start
			}
			for i := 25; i < 30; i++ {
				yhats[i] = tc.end
			}
			p := Analyze(1000, futureWith(yhats, 0))
			assert.Equal(t, tc.want, p.Trend)
		})
	}
}

func TestAnalyzeConfidenceClassification(t *testing.T) {
	// Spread threshold is 20% of the current stock.
	high := Analyze(100, flatHorizon(1, 15))
	assert.Equal(t, models.ConfidenceHigh, high.Confidence)

	low := Analyze(100, flatHorizon(1, 25))
	assert.Equal(t, models.ConfidenceLow, low.Confidence)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	future := flatHorizon(2.5, 4)
	first := Analyze(40, future)
	second := Analyze(40, future)
	assert.Equal(t, first, second)
}

func TestAnalyzeKeepsForecastData(t *testing.T) {
	future := flatHorizon(2, 1)
	p := Analyze(100, future)
	require.Len(t, p.ForecastData, 30)
	assert.Equal(t, future[0].Yhat, p.ForecastData[0].Yhat)
}
