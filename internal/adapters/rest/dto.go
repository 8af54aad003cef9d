package rest

import (
	"listings-service/internal/core/domain"
	"time"
)

// ListingResponse - DTO карточки и деталей объявления
type ListingResponse struct {
	ID          string   `json:"id"`
	PropertyRef string   `json:"property_ref,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	City        string   `json:"city,omitempty"`
	Address     string   `json:"address,omitempty"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
	Price       *float64 `json:"price"`
	Bedrooms    *float64 `json:"bedrooms"`
	Bathrooms   *float64 `json:"bathrooms"`
	SizeInSqFt  *float64 `json:"size_sqft"`
	YearBuilt   *int     `json:"year_built"`
	Category    string   `json:"category"`
	Amenities   []string `json:"amenities"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Geohash     string   `json:"geohash,omitempty"`
	ListingMode string   `json:"listing_mode"`
}

type RangeLabelResponse struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

type RangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type YearRangeResponse struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FiltersResponse - каноническое состояние фильтров после разбора URL
type FiltersResponse struct {
	FreeText        string            `json:"free_text"`
	ListingMode     string            `json:"listing_mode"`
	PropertyTypes   []string          `json:"property_types"`
	PriceRange      RangeResponse     `json:"price_range"`
	MinBedrooms     int               `json:"min_bedrooms"`
	MinBathrooms    int               `json:"min_bathrooms"`
	Location        string            `json:"location"`
	SquareFeetRange RangeResponse     `json:"square_feet_range"`
	YearBuiltRange  YearRangeResponse `json:"year_built_range"`
	Amenities       []string          `json:"amenities"`
	PropertyID      string            `json:"property_id"`
	Near            string            `json:"near"`
}

// ListingsPageResponse - одна страница выдачи
type ListingsPageResponse struct {
	Data       []ListingResponse  `json:"data"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	TotalPages int                `json:"total_pages"`
	Range      RangeLabelResponse `json:"range"`
	Sort       string             `json:"sort"`
	Filters    FiltersResponse    `json:"filters"`
	// Query - канонический query string, который клиент должен записать в адресную строку
	Query string `json:"query"`
}

type QueryPatchRequest struct {
	Query string                 `json:"query"`
	Patch map[string]interface{} `json:"patch"`
}

type FilterOptionsResponse struct {
	Cities     []string           `json:"cities"`
	Categories []string           `json:"categories"`
	Amenities  []string           `json:"amenities"`
	Price      *RangeResponse     `json:"price"`
	SquareFeet *RangeResponse     `json:"square_feet"`
	YearBuilt  *YearRangeResponse `json:"year_built"`
	Total      int                `json:"total"`
}

type CatalogStatusResponse struct {
	Status    string     `json:"status"`
	Count     int        `json:"count"`
	Source    string     `json:"source"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func toListingResponse(l domain.Listing) ListingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return ListingResponse{
		ID:          l.ID,
		PropertyRef: l.PropertyRef,
		Title:       l.Title,
		Description: l.Description,
		City:        l.City,
		Address:     l.Address,
		State:       l.State,
		Country:     l.Country,
		Price:       l.Price,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		SizeInSqFt:  l.SizeInSqFt,
		YearBuilt:   l.YearBuilt,
		Category:    l.Category,
		Amenities:   amenities,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Geohash:     l.Geohash,
		ListingMode: string(l.ListingMode),
	}
}

func toFiltersResponse(f domain.FilterState) FiltersResponse {
	return FiltersResponse{
		FreeText:        f.FreeText,
		ListingMode:     string(f.ListingMode),
		PropertyTypes:   nonNil(f.PropertyTypes),
		PriceRange:      RangeResponse{Min: f.PriceRange.Min, Max: f.PriceRange.Max},
		MinBedrooms:     f.MinBedrooms,
		MinBathrooms:    f.MinBathrooms,
		Location:        f.Location,
		SquareFeetRange: RangeResponse{Min: f.SquareFeetRange.Min, Max: f.SquareFeetRange.Max},
		YearBuiltRange:  YearRangeResponse{Min: f.YearBuiltRange.Min, Max: f.YearBuiltRange.Max},
		Amenities:       nonNil(f.Amenities),
		PropertyID:      f.PropertyID,
		Near:            f.Near,
	}
}

func toListingsPageResponse(res *domain.QueryResult) ListingsPageResponse {
	page := res.Page
	data := make([]ListingResponse, len(page.Items))
	for i, l := range page.Items {
		data[i] = toListingResponse(l)
	}
	return ListingsPageResponse{
		Data:       data,
		Total:      page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PageSize,
		TotalPages: page.TotalPages,
		Range: RangeLabelResponse{
			Start: page.Range.Start,
			End:   page.Range.End,
			Total: page.Range.Total,
			Text:  page.Range.String(),
		},
		Sort:    string(res.State.Sort),
		Filters: toFiltersResponse(res.State.Filters),
		Query:   res.Query,
	}
}

func toFilterOptionsResponse(o *domain.FilterOptions) FilterOptionsResponse {
	resp := FilterOptionsResponse{
		Cities:     nonNil(o.Cities),
		Categories: nonNil(o.Categories),
		Amenities:  nonNil(o.Amenities),
		Total:      o.Count,
	}
	if o.Price != nil {
		resp.Price = &RangeResponse{Min: o.Price.Min, Max: o.Price.Max}
	}
	if o.SquareFeet != nil {
		resp.SquareFeet = &RangeResponse{Min: o.SquareFeet.Min, Max: o.SquareFeet.Max}
	}
	if o.YearBuilt != nil {
		resp.YearBuilt = &YearRangeResponse{Min: o.YearBuilt.Min, Max: o.YearBuilt.Max}
	}
	return resp
}

func toCatalogStatusResponse(s domain.CatalogState) CatalogStatusResponse {
	resp := CatalogStatusResponse{
		Status: string(s.Status),
		Count:  s.Count,
		Source: s.Source,
	}
	if !s.LoadedAt.IsZero() {
		loadedAt := s.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	if s.LastError != nil {
		resp.LastError = s.LastError.Error()
	}
	return resp
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
