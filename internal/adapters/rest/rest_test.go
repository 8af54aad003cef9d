package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/catalog"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/session"
	"listings-service/internal/core/usecase"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	records []domain.RawRecord
	err     error
	gate    chan struct{}
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.records, s.err
}

func priceLadder() []domain.RawRecord {
	var out []domain.RawRecord
	for i := 0; i < 20; i++ {
		out = append(out, domain.RawRecord{
			"id":        fmt.Sprintf("P-%02d", i),
			"title":     fmt.Sprintf("Listing %d", i),
			"price":     float64(50000 + i*25000),
			"city":      "Lekki",
			"type":      "bungalow",
			"bedrooms":  float64(3),
			"amenities": []interface{}{"Pool"},
		})
	}
	return out
}

func newTestRouter(t *testing.T, src *stubSource, load bool) (http.Handler, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.NewCatalog(src, nil, nil, contextkeys.NoopLogger(), catalog.Config{})
	require.NoError(t, err)
	if load {
		require.NoError(t, c.Load(context.Background()))
	}

	pipeline := engine.NewPipeline()
	opts := session.Options{PageSize: domain.DefaultPageSize}
	router := NewRouter(
		[]string{"http://localhost:5173"},
		NewListingsHandler(
			usecase.NewQueryListingsUseCase(c, pipeline, opts),
			usecase.NewPatchQueryUseCase(c, pipeline, opts),
			usecase.NewGetListingDetailsUseCase(c),
		),
		NewFilterHandler(usecase.NewGetFilterOptionsUseCase(c)),
		NewCatalogHandler(usecase.NewRefreshCatalogUseCase(c), usecase.NewGetCatalogStatusUseCase(c)),
		contextkeys.NoopLogger(),
	)
	return router, c
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFindListingsPriceRange(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/listings?minPrice=100000&maxPrice=300000&sort=PriceLow&utm_source=x", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	var resp ListingsPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Total)
	assert.Len(t, resp.Data, 9)
	assert.Equal(t, "1–9 of 9", resp.Range.Text)
	assert.Equal(t, 100000.0, *resp.Data[0].Price)
	assert.Equal(t, "PriceLow", resp.Sort)
	assert.Contains(t, resp.Query, "utm_source=x")
	assert.Contains(t, resp.Query, "minPrice=100000")
}

func TestFindListingsClampsPage(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/listings?page=99", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListingsPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Data, 2)
	assert.Contains(t, resp.Query, "page=3")
}

func TestPatchQueryResetsPage(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	body, _ := json.Marshal(QueryPatchRequest{
		Query: "?page=2&sort=PriceHigh",
		Patch: map[string]interface{}{"maxPrice": 200000},
	})
	rec := doRequest(t, h, http.MethodPost, "/api/v1/listings/query", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListingsPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 7, resp.Total)
	assert.Equal(t, 200000.0, *resp.Data[0].Price)
	assert.NotContains(t, resp.Query, "page=")
}

func TestPatchQueryBadBody(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/listings/query", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request body", resp.Error)
}

func TestListingsWhileLoading(t *testing.T) {
	src := &stubSource{records: priceLadder(), gate: make(chan struct{})}
	h, c := newTestRouter(t, src, false)
	defer close(src.gate)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/listings", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, domain.CatalogLoading, c.State().Status)
}

func TestListingsSourceUnavailable(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	h, c := newTestRouter(t, src, false)
	require.Error(t, c.Load(context.Background()))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/listings", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Retryable)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/listings/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
}

func TestListingDetails(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/listings/p-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "P-03", resp.ID)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/listings/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterOptionsAndStatus(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/filters/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts FilterOptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Lekki"}, opts.Cities)
	assert.Equal(t, 20, opts.Total)
	require.NotNil(t, opts.Price)
	assert.Equal(t, 50000.0, opts.Price.Min)
	assert.Equal(t, 525000.0, opts.Price.Max)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/catalog/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status CatalogStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, 20, status.Count)
	assert.Equal(t, "stub", status.Source)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t, &stubSource{records: priceLadder()}, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/listings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
