package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"aiservice/models"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// ProductStore is the persistence gateway the pipeline depends on.
type ProductStore interface {
	FetchEligible(ctx context.Context, limit int) ([]models.ProductRecord, error)
	BulkPersist(ctx context.Context, updates []models.PredictionUpdate) (models.BulkWriteResult, error)
}

// PostgresProductStore implements the gateway on a pgx connection pool.
type PostgresProductStore struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

func NewPostgresProductStore(db *pgxpool.Pool, log zerolog.Logger) *PostgresProductStore {
	return &PostgresProductStore{
		db:  db,
		log: log.With().Str("component", "store.products").Logger(),
	}
}

// FetchEligible returns up to limit products that have a non-empty sales
// history, projecting only the fields the pipeline needs. Filtering happens
// server-side so ineligible rows never cross the wire.
func (s *PostgresProductStore) FetchEligible(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	query := `
		SELECT id, name, COALESCE(quantity, 0), history, category
		FROM products
		WHERE history IS NOT NULL AND jsonb_array_length(history) > 0
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible products: %w", err)
	}
	defer rows.Close()

	products := []models.ProductRecord{}
	for rows.Next() {
		var p models.ProductRecord
		var history []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &history, &p.Category); err != nil {
			s.log.Error().Err(err).Msg("failed to scan product row")
			continue
		}
		if err := json.Unmarshal(history, &p.History); err != nil {
			s.log.Error().Err(err).Str("product_id", p.ID).Msg("malformed history payload")
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read eligible products: %w", err)
	}

	s.log.Info().Int("count", len(products)).Msg("📉 Fetched products for prediction batch")
	return products, nil
}

// BulkPersist writes the predictions back in one unordered batch: each
// product's ai_forecast and last_analyzed are set independently, so one
// failing update never blocks the others. Write failures are logged and
// counted, not raised.
func (s *PostgresProductStore) BulkPersist(ctx context.Context, updates []models.PredictionUpdate) (models.BulkWriteResult, error) {
	var result models.BulkWriteResult
	if len(updates) == 0 {
		return result, nil
	}

	batch, skipped := buildUpdateBatch(updates, time.Now().UTC())
	for _, u := range skipped {
		s.log.Error().Str("product_id", u.ProductID).Msg("skipping malformed prediction update")
	}
	result.Failed = int64(len(skipped))

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			result.Failed++
			s.log.Error().Err(err).Msg("bulk write statement failed")
			continue
		}
		result.Matched += tag.RowsAffected()
		result.Modified += tag.RowsAffected()
	}

	if result.Failed > 0 {
		s.log.Error().Int64("failed", result.Failed).Int64("modified", result.Modified).Msg("❌ Bulk write completed with failures")
	} else {
		s.log.Info().Int64("modified", result.Modified).Msg("💾 Bulk write success")
	}
	return result, nil
}

// buildUpdateBatch queues one independent UPDATE per usable prediction and
// returns the updates that could not be serialized.
func buildUpdateBatch(updates []models.PredictionUpdate, analyzedAt time.Time) (*pgx.Batch, []models.PredictionUpdate) {
	batch := &pgx.Batch{}
	var skipped []models.PredictionUpdate
	for _, u := range updates {
		payload, err := json.Marshal(u.Prediction)
		if err != nil || u.ProductID == "" {
			skipped = append(skipped, u)
			continue
		}
		batch.Queue(
			`UPDATE products SET ai_forecast = $1, last_analyzed = $2 WHERE id = $3`,
			payload, analyzedAt, u.ProductID,
		)
	}
	return batch, skipped
}

// ListProducts returns a page of products with their stored forecasts.
func (s *PostgresProductStore) ListProducts(ctx context.Context, limit, offset int) ([]models.ProductSummary, error) {
	query := `
		SELECT id, name, COALESCE(quantity, 0), category, ai_forecast, last_analyzed
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.ProductSummary{}
	for rows.Next() {
		var p models.ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Category, &p.AIForecast, &p.LastAnalyzed); err != nil {
			return nil, fmt.Errorf("failed to scan product summary: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the catalog size for pagination.
func (s *PostgresProductStore) CountProducts(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// GetForecast returns one product's stored forecast.
func (s *PostgresProductStore) GetForecast(ctx context.Context, productID string) (models.ProductForecast, error) {
	query := `
		SELECT id, name, ai_forecast, last_analyzed
		FROM products
		WHERE id = $1
	`
	var f models.ProductForecast
	err := s.db.QueryRow(ctx, query, productID).Scan(&f.ProductID, &f.Name, &f.AIForecast, &f.LastAnalyzed)
	if errors.Is(err, pgx.ErrNoRows) {
		return f, ErrNotFound
	}
	if err != nil {
		return f, fmt.Errorf("failed to query product forecast: %w", err)
	}
	return f, nil
}

// ForecastSummary aggregates stored forecasts across the whole catalog,
// including the products closest to stock-out.
func (s *PostgresProductStore) ForecastSummary(ctx context.Context) (models.ForecastSummary, error) {
	var summary models.ForecastSummary
	query := `
		SELECT
			COUNT(*) FILTER (WHERE ai_forecast IS NOT NULL),
			COUNT(*) FILTER (WHERE ai_forecast->>'trend' = 'uptrend'),
			COUNT(*) FILTER (WHERE ai_forecast->>'trend' = 'downtrend'),
			COUNT(*) FILTER (WHERE ai_forecast->>'trend' = 'stable'),
			COUNT(*) FILTER (WHERE ai_forecast->>'stock_out_date' IS NOT NULL)
		FROM products
	`
	err := s.db.QueryRow(ctx, query).Scan(
		&summary.Analyzed, &summary.Uptrend, &summary.Downtrend, &summary.Stable, &summary.Critical,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate forecasts: %w", err)
	}

	criticalQuery := `
		SELECT name, ai_forecast->>'stock_out_date'
		FROM products
		WHERE ai_forecast->>'stock_out_date' IS NOT NULL
		ORDER BY ai_forecast->>'stock_out_date'
		LIMIT 10
	`
	rows, err := s.db.Query(ctx, criticalQuery)
	if err != nil {
		return summary, fmt.Errorf("failed to query critical products: %w", err)
	}
	defer rows.Close()

	summary.CriticalProducts = []models.CriticalProduct{}
	for rows.Next() {
		var c models.CriticalProduct
		if err := rows.Scan(&c.Name, &c.StockOutDate); err != nil {
			return summary, fmt.Errorf("failed to scan critical product: %w", err)
		}
		summary.CriticalProducts = append(summary.CriticalProducts, c)
	}
	return summary, rows.Err()
}
