package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiservice/models"
	"aiservice/store"
)

type fakeReader struct {
	products  []models.ProductSummary
	forecasts map[string]models.ProductForecast
	gotLimit  int
	gotOffset int
}

func (f *fakeReader) ListProducts(ctx context.Context, limit, offset int) ([]models.ProductSummary, error) {
	f.gotLimit = limit
	f.gotOffset = offset
	return f.products, nil
}

func (f *fakeReader) CountProducts(ctx context.Context) (int, error) {
	return len(f.products), nil
}

func (f *fakeReader) GetForecast(ctx context.Context, productID string) (models.ProductForecast, error) {
	forecast, ok := f.forecasts[productID]
	if !ok {
		return models.ProductForecast{}, store.ErrNotFound
	}
	return forecast, nil
}

func newProductApp(reader *fakeReader) *fiber.App {
	app := fiber.New()
	h := NewProductHandler(reader, zerolog.Nop())
	app.Get("/api/v1/products", h.HandleListProducts)
	app.Get("/api/v1/products/:productId/forecast", h.HandleGetProductForecast)
	return app
}

func TestHandleListProducts(t *testing.T) {
	reader := &fakeReader{products: []models.ProductSummary{
		{ID: "p1", Name: "Beans", Quantity: 12},
	}}
	app := newProductApp(reader)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?page=3&pageSize=10", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 10, reader.gotLimit)
	assert.Equal(t, 20, reader.gotOffset)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), pagination["totalItems"])
	assert.Equal(t, float64(3), pagination["currentPage"])
}

func TestHandleListProductsClampsPaging(t *testing.T) {
	reader := &fakeReader{}
	app := newProductApp(reader)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?page=-1&pageSize=9999", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 50, reader.gotLimit)
	assert.Equal(t, 0, reader.gotOffset)
}

func TestHandleGetProductForecast(t *testing.T) {
	reader := &fakeReader{forecasts: map[string]models.ProductForecast{
		"p1": {ProductID: "p1", Name: "Beans", AIForecast: models.JSONB{"trend": "uptrend"}},
	}}
	app := newProductApp(reader)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/p1/forecast", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	forecast, ok := data["ai_forecast"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "uptrend", forecast["trend"])
}

func TestHandleGetProductForecastNotFound(t *testing.T) {
	app := newProductApp(&fakeReader{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/missing/forecast", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleGetProductForecastNotAnalyzedYet(t *testing.T) {
	reader := &fakeReader{forecasts: map[string]models.ProductForecast{
		"p1": {ProductID: "p1", Name: "Beans"},
	}}
	app := newProductApp(reader)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/p1/forecast", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
