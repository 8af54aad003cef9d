package session

import (
	"fmt"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/querysync"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	listings []domain.Listing
	err      error
}

func (f *fakeSource) Snapshot() ([]domain.Listing, error) { return f.listings, f.err }

func fptr(v float64) *float64 { return &v }

func catalog(n int) []domain.Listing {
	out := make([]domain.Listing, n)
	for i := range out {
		out[i] = domain.Listing{
			ID:          fmt.Sprintf("L-%02d", i),
			Price:       fptr(float64((i + 1) * 1000)),
			Bedrooms:    fptr(float64(i % 5)),
			City:        []string{"Lekki", "Abuja"}[i%2],
			ListingMode: domain.ListingModeBuy,
		}
	}
	return out
}

func TestLoadingStateDefersRecompute(t *testing.T) {
	src := &fakeSource{err: domain.ErrCatalogLoading}
	c := NewController(src, nil, "beds=2", Options{})

	_, err := c.View()
	require.ErrorIs(t, err, domain.ErrCatalogLoading)
	assert.Equal(t, 0, c.Recomputes())

	src.listings, src.err = catalog(30), nil
	res, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, 1, c.Recomputes())
	assert.Equal(t, 18, res.Page.TotalCount)
}

func TestMutationsAreCoalesced(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "", Options{})
	_, err := c.View()
	require.NoError(t, err)

	for _, q := range []string{"L", "L-", "L-0", "L-01"} {
		c.SetFreeText(q)
	}
	c.SetMinBedrooms(1)

	res, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Recomputes())
	assert.Equal(t, 1, res.Page.TotalCount)

	// без изменений повторный пересчёт не нужен
	_, _ = c.View()
	assert.Equal(t, 2, c.Recomputes())
}

func TestFilterChangeResetsPage(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "page=3", Options{})
	assert.Equal(t, 3, c.State().Page.Number)

	c.SetLocation("Lekki")
	assert.Equal(t, 1, c.State().Page.Number)
	assert.Equal(t, "Lekki", c.State().Filters.Location)

	values, _ := url.ParseQuery(c.Query())
	assert.False(t, values.Has(querysync.KeyPage))
	assert.Equal(t, "Lekki", values.Get(querysync.KeyLocation))
}

func TestNoOpMutationKeepsPage(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "page=2&location=Lekki", Options{})

	c.SetLocation("Lekki")
	c.SetAmenities(nil)
	assert.Equal(t, 2, c.State().Page.Number)
}

func TestSortKeepsPageByDefault(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "page=2", Options{})
	c.SetSort(domain.SortPriceHigh)
	assert.Equal(t, 2, c.State().Page.Number)

	reset := NewController(&fakeSource{listings: catalog(30)}, nil, "page=2", Options{ResetPageOnSort: true})
	reset.SetSort(domain.SortPriceHigh)
	assert.Equal(t, 1, reset.State().Page.Number)
}

func TestPageOutOfRangeIsClampedInQuery(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "page=40&utm_source=mail", Options{})

	res, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, 4, res.Page.Page)
	assert.Equal(t, 4, res.State.Page.Number)

	values, _ := url.ParseQuery(res.Query)
	assert.Equal(t, "4", values.Get(querysync.KeyPage))
	assert.Equal(t, "mail", values.Get("utm_source"))
}

func TestApplyPatch(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(30)}, nil, "page=3&location=Abuja", Options{})

	c.ApplyPatch(querysync.Patch{querysync.KeySort: "PriceLow"})
	assert.Equal(t, domain.SortPriceLow, c.State().Sort)
	assert.Equal(t, 3, c.State().Page.Number)

	c.ApplyPatch(querysync.Patch{querysync.KeyLocation: "", querysync.KeyBeds: 2})
	assert.Equal(t, domain.AllCities, c.State().Filters.Location)
	assert.Equal(t, 2, c.State().Filters.MinBedrooms)
	assert.Equal(t, 1, c.State().Page.Number)

	c.ApplyPatch(querysync.Patch{querysync.KeyPage: 2})
	assert.Equal(t, 2, c.State().Page.Number)

	res, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, querysync.ParseQuery(res.Query).Filters, res.State.Filters)
}

func TestTogglesAndReset(t *testing.T) {
	c := NewController(&fakeSource{listings: catalog(10)}, nil, "", Options{})

	c.TogglePropertyType("Bungalow")
	c.ToggleAmenity("Pool")
	c.ToggleAmenity("Gym")
	c.ToggleAmenity("Pool")
	assert.Equal(t, []string{"Bungalow"}, c.State().Filters.PropertyTypes)
	assert.Equal(t, []string{"Gym"}, c.State().Filters.Amenities)

	c.SetSort(domain.SortPriceLow)
	c.Reset()
	assert.True(t, c.State().Filters.IsDefault())
	assert.Equal(t, domain.SortNewest, c.State().Sort)
	assert.Equal(t, "", c.Query())
}
