package domain

import (
	"math"
	"slices"
	"strings"
)

const (
	// AllCities - значение фильтра по городу, не накладывающее ограничений
	AllCities = "All Cities"

	DefaultPriceMin float64 = 0
	// DefaultPriceMax - нулевая верхняя граница означает, что диапазон открыт сверху
	DefaultPriceMax float64 = 0
)

// Range - числовой диапазон с включительными границами. Max == 0 - граница сверху не задана.
type Range struct {
	Min float64
	Max float64
}

// YearRange - диапазон годов постройки. Нулевая граница означает "не задана".
type YearRange struct {
	Min int
	Max int
}

// FilterState - все активные критерии фильтрации.
// Значение заменяется целиком: методы With* возвращают копию и не трогают исходный объект.
type FilterState struct {
	FreeText        string
	ListingMode     ListingMode
	PropertyTypes   []string
	PriceRange      Range
	MinBedrooms     int
	MinBathrooms    int
	Location        string
	SquareFeetRange Range
	YearBuiltRange  YearRange
	Amenities       []string
	PropertyID      string
	Near            string
}

func DefaultPriceRange() Range {
	return Range{Min: DefaultPriceMin, Max: DefaultPriceMax}
}

// DefaultFilterState - состояние, в котором ни одно измерение не ограничивает выборку
func DefaultFilterState() FilterState {
	return FilterState{
		ListingMode: ListingModeAll,
		PriceRange:  DefaultPriceRange(),
		Location:    AllCities,
	}
}

// --- проверки активности измерений ---

func (f FilterState) FreeTextActive() bool { return strings.TrimSpace(f.FreeText) != "" }

func (f FilterState) LocationActive() bool {
	return f.Location != AllCities && f.Location != ""
}

func (f FilterState) PriceRangeActive() bool { return f.PriceRange != DefaultPriceRange() }

func (f FilterState) SquareFeetRangeActive() bool { return f.SquareFeetRange.Max > 0 }

func (f FilterState) YearBuiltRangeActive() bool { return f.YearBuiltRange != YearRange{} }

func (f FilterState) PropertyIDActive() bool { return strings.TrimSpace(f.PropertyID) != "" }

func (f FilterState) NearActive() bool { return strings.TrimSpace(f.Near) != "" }

// IsDefault - true, если ни одно измерение не активно
func (f FilterState) IsDefault() bool {
	return f.Equal(DefaultFilterState())
}

// Equal - глубокое сравнение. Наборы (типы, удобства) сравниваются как множества.
func (f FilterState) Equal(o FilterState) bool {
	return f.FreeText == o.FreeText &&
		f.ListingMode == o.ListingMode &&
		f.PriceRange == o.PriceRange &&
		f.MinBedrooms == o.MinBedrooms &&
		f.MinBathrooms == o.MinBathrooms &&
		f.Location == o.Location &&
		f.SquareFeetRange == o.SquareFeetRange &&
		f.YearBuiltRange == o.YearBuiltRange &&
		f.PropertyID == o.PropertyID &&
		f.Near == o.Near &&
		sameSet(f.PropertyTypes, o.PropertyTypes) &&
		sameSet(f.Amenities, o.Amenities)
}

// --- API изменений: по одному методу на измерение ---

func (f FilterState) WithFreeText(q string) FilterState {
	next := f.clone()
	next.FreeText = q
	return next
}

func (f FilterState) WithListingMode(mode ListingMode) FilterState {
	next := f.clone()
	switch mode {
	case ListingModeBuy, ListingModeRent:
		next.ListingMode = mode
	default:
		next.ListingMode = ListingModeAll
	}
	return next
}

func (f FilterState) WithPropertyTypes(types []string) FilterState {
	next := f.clone()
	next.PropertyTypes = CleanSet(types)
	return next
}

// WithPropertyTypeToggled добавляет тип, если его не было, и убирает, если был
func (f FilterState) WithPropertyTypeToggled(t string) FilterState {
	return f.WithPropertyTypes(toggle(f.PropertyTypes, t))
}

func (f FilterState) WithPriceRange(r Range) FilterState {
	next := f.clone()
	next.PriceRange = cleanRange(r)
	return next
}

func (f FilterState) WithMinBedrooms(n int) FilterState {
	next := f.clone()
	next.MinBedrooms = max(n, 0)
	return next
}

func (f FilterState) WithMinBathrooms(n int) FilterState {
	next := f.clone()
	next.MinBathrooms = max(n, 0)
	return next
}

func (f FilterState) WithLocation(city string) FilterState {
	next := f.clone()
	if strings.TrimSpace(city) == "" {
		city = AllCities
	}
	next.Location = city
	return next
}

func (f FilterState) WithSquareFeetRange(r Range) FilterState {
	next := f.clone()
	next.SquareFeetRange = cleanRange(r)
	return next
}

func (f FilterState) WithYearBuiltRange(r YearRange) FilterState {
	next := f.clone()
	next.YearBuiltRange = YearRange{Min: max(r.Min, 0), Max: max(r.Max, 0)}
	return next
}

func (f FilterState) WithAmenities(amenities []string) FilterState {
	next := f.clone()
	next.Amenities = CleanSet(amenities)
	return next
}

func (f FilterState) WithAmenityToggled(a string) FilterState {
	return f.WithAmenities(toggle(f.Amenities, a))
}

func (f FilterState) WithPropertyID(id string) FilterState {
	next := f.clone()
	next.PropertyID = strings.TrimSpace(id)
	return next
}

func (f FilterState) WithNear(prefix string) FilterState {
	next := f.clone()
	next.Near = strings.ToLower(strings.TrimSpace(prefix))
	return next
}

// cleanRange заменяет отрицательные, NaN и бесконечные границы на 0 (не задана)
func cleanRange(r Range) Range {
	return Range{Min: cleanBound(r.Min), Max: cleanBound(r.Max)}
}

func cleanBound(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (f FilterState) clone() FilterState {
	next := f
	next.PropertyTypes = slices.Clone(f.PropertyTypes)
	next.Amenities = slices.Clone(f.Amenities)
	return next
}

// CleanSet обрезает пробелы, выбрасывает пустые значения и дубликаты, сохраняя порядок.
// Запятая - разделитель в URL, поэтому значения с запятой тоже отбрасываются.
func CleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.Contains(v, ",") || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toggle(values []string, v string) []string {
	v = strings.TrimSpace(v)
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(slices.Clone(values), i, i+1)
	}
	return append(slices.Clone(values), v)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}
