package usecase

import (
	"context"
	"errors"
	"fmt"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/catalog"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/session"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	records []domain.RawRecord
	err     error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	return s.records, s.err
}

func sourceRecords() []domain.RawRecord {
	var out []domain.RawRecord
	for i := 0; i < 20; i++ {
		out = append(out, domain.RawRecord{
			"id":        fmt.Sprintf("P-%02d", i),
			"title":     fmt.Sprintf("Listing %d", i),
			"price":     float64(50000 + i*25000),
			"city":      []string{"Lekki", "abuja"}[i%2],
			"type":      []string{"bungalow", "duplex"}[i%2],
			"bedrooms":  float64(i % 4),
			"yearBuilt": float64(1990 + i),
			"amenities": []interface{}{"Pool", "gym"},
			"status":    "for sale",
		})
	}
	out = append(out, domain.RawRecord{"id": "R-1", "title": "Flat to let", "status": "for rent", "price": "₦1,200,000"})
	return out
}

func loadedCatalog(t *testing.T, src *stubSource) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewCatalog(src, nil, nil, contextkeys.NoopLogger(), catalog.Config{})
	require.NoError(t, err)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestQueryListings(t *testing.T) {
	c := loadedCatalog(t, &stubSource{records: sourceRecords()})
	uc := NewQueryListingsUseCase(c, engine.NewPipeline(), session.Options{})

	res, err := uc.Execute(context.Background(), "minPrice=100000&maxPrice=300000&sort=PriceLow")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Page.TotalCount)
	assert.Equal(t, domain.RangeLabel{Start: 1, End: 9, Total: 9}, res.Page.Range)
	assert.Equal(t, 100000.0, *res.Page.Items[0].Price)

	res, err = uc.Execute(context.Background(), "status=for-rent")
	require.NoError(t, err)
	require.Equal(t, 1, res.Page.TotalCount)
	assert.Equal(t, "R-1", res.Page.Items[0].ID)
}

func TestQueryListingsWhileLoading(t *testing.T) {
	c, err := catalog.NewCatalog(&stubSource{err: errors.New("down")}, nil, nil, contextkeys.NoopLogger(), catalog.Config{})
	require.NoError(t, err)

	uc := NewQueryListingsUseCase(c, engine.NewPipeline(), session.Options{})
	_, err = uc.Execute(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrCatalogLoading) || errors.Is(err, domain.ErrCatalogUnavailable))
}

func TestPatchQuery(t *testing.T) {
	c := loadedCatalog(t, &stubSource{records: sourceRecords()})
	uc := NewPatchQueryUseCase(c, engine.NewPipeline(), session.Options{})

	res, err := uc.Execute(context.Background(), "page=2&utm_source=ad", map[string]interface{}{
		"type":     []string{"Bungalow"},
		"beds":     3,
		"location": "",
	})
	require.NoError(t, err)

	values, err := url.ParseQuery(res.Query)
	require.NoError(t, err)
	assert.Equal(t, "Bungalow", values.Get("type"))
	assert.Equal(t, "3", values.Get("beds"))
	assert.Equal(t, "ad", values.Get("utm_source"))
	assert.False(t, values.Has("page"))

	// bungalow - чётные индексы, 3 спальни - индексы 3, 7, 11... нечётные, значит пусто
	assert.Equal(t, 0, res.Page.TotalCount)
	assert.Equal(t, domain.RangeLabel{Start: 0, End: 0, Total: 0}, res.Page.Range)
}

func TestGetListingDetails(t *testing.T) {
	c := loadedCatalog(t, &stubSource{records: sourceRecords()})
	uc := NewGetListingDetailsUseCase(c)

	l, err := uc.Execute(context.Background(), "p-03")
	require.NoError(t, err)
	assert.Equal(t, "P-03", l.ID)
	assert.Equal(t, "Abuja", l.City)

	_, err = uc.Execute(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestGetFilterOptions(t *testing.T) {
	c := loadedCatalog(t, &stubSource{records: sourceRecords()})
	uc := NewGetFilterOptionsUseCase(c)

	opts, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Abuja", "Lekki"}, opts.Cities)
	assert.Equal(t, []string{"Bungalow", "Fully-Detached Duplex"}, opts.Categories)
	assert.Equal(t, []string{"gym", "Pool"}, opts.Amenities)
	require.NotNil(t, opts.Price)
	assert.Equal(t, domain.Range{Min: 50000, Max: 1200000}, *opts.Price)
	require.NotNil(t, opts.YearBuilt)
	assert.Equal(t, domain.YearRange{Min: 1990, Max: 2009}, *opts.YearBuilt)
	assert.Nil(t, opts.SquareFeet)
	assert.Equal(t, 21, opts.Count)
}

func TestRefreshCatalog(t *testing.T) {
	src := &stubSource{records: sourceRecords()}
	c := loadedCatalog(t, src)
	uc := NewRefreshCatalogUseCase(c)

	src.records = src.records[:5]
	state, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, state.Count)
	assert.Equal(t, domain.CatalogReady, state.Status)

	src.err = errors.New("boom")
	state, err = uc.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, 5, state.Count)

	assert.Equal(t, 5, NewGetCatalogStatusUseCase(c).Execute(context.Background()).Count)
}
