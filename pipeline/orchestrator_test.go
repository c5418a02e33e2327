package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiservice/forecaster"
	"aiservice/models"
)

type fakeStore struct {
	products  []models.ProductRecord
	fetchErr  error
	persisted [][]models.PredictionUpdate
	result    models.BulkWriteResult
	writeErr  error
}

func (f *fakeStore) FetchEligible(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.products) > limit {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeStore) BulkPersist(ctx context.Context, updates []models.PredictionUpdate) (models.BulkWriteResult, error) {
	f.persisted = append(f.persisted, updates)
	return f.result, f.writeErr
}

// scriptedModel fails on ten-day series and otherwise forecasts a flat two
// units per day with a tight interval.
type scriptedModel struct{}

func (scriptedModel) Forecast(series models.DailySeries, cfg forecaster.ModelConfig) ([]models.ForecastPoint, error) {
	if len(series) == 10 {
		return nil, errors.New("fit diverged")
	}
	points := make([]models.ForecastPoint, 0, len(series)+cfg.Horizon)
	for i := 0; i < len(series)+cfg.Horizon; i++ {
		points = append(points, models.ForecastPoint{
			Date: series[0].Date.AddDate(0, 0, i), Yhat: 2, Lower: 1.9, Upper: 2.1,
		})
	}
	return points, nil
}

func historyOf(days int) []models.RawObservation {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	history := make([]models.RawObservation, 0, days)
	for i := 0; i < days; i++ {
		history = append(history, models.RawObservation{
			"date":  start.AddDate(0, 0, i).Format("2006-01-02"),
			"sales": 2.0,
		})
	}
	return history
}

func newOrchestrator(s *fakeStore, workers int) *Orchestrator {
	engine := forecaster.NewEngine(scriptedModel{}, zerolog.Nop())
	return New(s, engine, workers, zerolog.Nop())
}

func TestRunBatchMixedOutcomes(t *testing.T) {
	s := &fakeStore{products: []models.ProductRecord{
		{ID: "a", Name: "Sparse", Quantity: 5, History: historyOf(3)},
		{ID: "b", Name: "Diverging", Quantity: 5, History: historyOf(10)},
		{ID: "c", Name: "Healthy", Quantity: 10, History: historyOf(14)},
	}}
	orch := newOrchestrator(s, 1)

	report, err := orch.RunBatch(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Updated)

	// Only product c contributes to the stats: flat demand is stable, and
	// 10 units at 2/day deplete within the horizon.
	assert.Equal(t, 0, report.Stats.Uptrend)
	assert.Equal(t, 0, report.Stats.Downtrend)
	assert.Equal(t, 1, report.Stats.Critical)

	require.Len(t, s.persisted, 1)
	require.Len(t, s.persisted[0], 1)
	update := s.persisted[0][0]
	assert.Equal(t, "c", update.ProductID)
	assert.Equal(t, "success", update.Prediction.Status)
	assert.Equal(t, 60, update.Prediction.PredictedMonthlyDemand)
	require.NotNil(t, update.Prediction.StockOutDate)
}

func TestRunBatchNoEligibleProducts(t *testing.T) {
	s := &fakeStore{}
	orch := newOrchestrator(s, 4)

	report, err := orch.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, "No products with sufficient history found.", report.Message)
	assert.Empty(t, s.persisted)
}

func TestRunBatchFetchFailureAborts(t *testing.T) {
	s := &fakeStore{fetchErr: errors.New("connection refused")}
	orch := newOrchestrator(s, 4)

	_, err := orch.RunBatch(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRunBatchSkipsPersistWhenNothingSucceeded(t *testing.T) {
	s := &fakeStore{products: []models.ProductRecord{
		{ID: "a", Quantity: 5, History: historyOf(3)},
		{ID: "b", Quantity: 5, History: historyOf(10)},
	}}
	orch := newOrchestrator(s, 4)

	report, err := orch.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Updated)
	assert.Empty(t, s.persisted)
}

func TestRunBatchToleratesPersistFailure(t *testing.T) {
	s := &fakeStore{
		products: []models.ProductRecord{{ID: "c", Quantity: 10, History: historyOf(14)}},
		writeErr: errors.New("write timeout"),
	}
	orch := newOrchestrator(s, 1)

	report, err := orch.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
}

func TestRunBatchHonorsLimit(t *testing.T) {
	var products []models.ProductRecord
	for i := 0; i < 5; i++ {
		products = append(products, models.ProductRecord{
			ID: fmt.Sprintf("p%d", i), Quantity: 100, History: historyOf(14),
		})
	}
	s := &fakeStore{products: products}
	orch := newOrchestrator(s, 2)

	report, err := orch.RunBatch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
}

func TestRunBatchIsIdempotent(t *testing.T) {
	products := []models.ProductRecord{
		{ID: "c", Name: "Healthy", Quantity: 10, History: historyOf(14)},
		{ID: "d", Name: "Stocked", Quantity: 10000, History: historyOf(20)},
	}

	first := &fakeStore{products: products}
	second := &fakeStore{products: products}

	r1, err := newOrchestrator(first, 1).RunBatch(context.Background(), 100)
	require.NoError(t, err)
	r2, err := newOrchestrator(second, 1).RunBatch(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, first.persisted, second.persisted)
}

func TestRunBatchStatsIndependentOfWorkerCount(t *testing.T) {
	var products []models.ProductRecord
	for i := 0; i < 8; i++ {
		products = append(products, models.ProductRecord{
			ID: fmt.Sprintf("p%d", i), Quantity: 10, History: historyOf(14),
		})
	}

	serial := &fakeStore{products: products}
	parallel := &fakeStore{products: products}

	r1, err := newOrchestrator(serial, 1).RunBatch(context.Background(), 100)
	require.NoError(t, err)
	r2, err := newOrchestrator(parallel, 4).RunBatch(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, r1.Stats, r2.Stats)
	assert.Equal(t, r1.Updated, r2.Updated)
}
