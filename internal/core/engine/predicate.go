// Package engine - чистое ядро выдачи: компиляция фильтров в предикаты,
// фильтрация, сортировка и разбиение на страницы.
package engine

import (
	"listings-service/internal/core/domain"
	"strings"
)

// Dimension - имя измерения фильтра, к которому относится предикат
type Dimension string

const (
	DimensionFreeText      Dimension = "free_text"
	DimensionPropertyTypes Dimension = "property_types"
	DimensionPrice         Dimension = "price"
	DimensionBedrooms      Dimension = "bedrooms"
	DimensionBathrooms     Dimension = "bathrooms"
	DimensionLocation      Dimension = "location"
	DimensionSquareFeet    Dimension = "square_feet"
	DimensionYearBuilt     Dimension = "year_built"
	DimensionAmenities     Dimension = "amenities"
	DimensionPropertyID    Dimension = "property_id"
	DimensionNear          Dimension = "near"
)

// Predicate - проверка одного активного измерения
type Predicate struct {
	Dimension Dimension
	Match     func(domain.Listing) bool
}

// Compile превращает состояние фильтра в список предикатов.
// Неактивные измерения предикатов не дают, поэтому состояние по умолчанию
// компилируется в пустой список. Тип сделки сюда не входит: он применяется отдельным проходом.
func Compile(f domain.FilterState) []Predicate {
	var preds []Predicate

	if f.FreeTextActive() {
		needle := strings.ToLower(strings.TrimSpace(f.FreeText))
		preds = append(preds, Predicate{DimensionFreeText, func(l domain.Listing) bool {
			for _, field := range l.SearchFields() {
				if field != "" && strings.Contains(strings.ToLower(field), needle) {
					return true
				}
			}
			return false
		}})
	}

	if len(f.PropertyTypes) > 0 {
		types := f.PropertyTypes
		preds = append(preds, Predicate{DimensionPropertyTypes, func(l domain.Listing) bool {
			for _, t := range types {
				if l.Category == t {
					return true
				}
			}
			return false
		}})
	}

	if f.PriceRangeActive() {
		r := f.PriceRange
		preds = append(preds, Predicate{DimensionPrice, func(l domain.Listing) bool {
			// объявление без цены не может попасть в заданный диапазон
			if l.Price == nil {
				return false
			}
			// нулевая верхняя граница - диапазон открыт сверху
			return *l.Price >= r.Min && (r.Max == 0 || *l.Price <= r.Max)
		}})
	}

	if f.MinBedrooms > 0 {
		n := float64(f.MinBedrooms)
		preds = append(preds, Predicate{DimensionBedrooms, func(l domain.Listing) bool {
			return l.BedroomsOrZero() >= n
		}})
	}

	if f.MinBathrooms > 0 {
		n := float64(f.MinBathrooms)
		preds = append(preds, Predicate{DimensionBathrooms, func(l domain.Listing) bool {
			return l.BathroomsOrZero() >= n
		}})
	}

	if f.LocationActive() {
		city := f.Location
		preds = append(preds, Predicate{DimensionLocation, func(l domain.Listing) bool {
			return l.City == city
		}})
	}

	if f.SquareFeetRangeActive() {
		r := f.SquareFeetRange
		preds = append(preds, Predicate{DimensionSquareFeet, func(l domain.Listing) bool {
			if l.SizeInSqFt == nil {
				return false
			}
			return *l.SizeInSqFt >= r.Min && *l.SizeInSqFt <= r.Max
		}})
	}

	if f.YearBuiltRangeActive() {
		r := f.YearBuiltRange
		preds = append(preds, Predicate{DimensionYearBuilt, func(l domain.Listing) bool {
			if l.YearBuilt == nil {
				return false
			}
			y := *l.YearBuilt
			// нулевая верхняя граница - диапазон открыт сверху
			return y >= r.Min && (r.Max == 0 || y <= r.Max)
		}})
	}

	if len(f.Amenities) > 0 {
		required := f.Amenities
		preds = append(preds, Predicate{DimensionAmenities, func(l domain.Listing) bool {
			for _, a := range required {
				if !l.HasAmenity(a) {
					return false
				}
			}
			return true
		}})
	}

	if f.PropertyIDActive() {
		id := strings.TrimSpace(f.PropertyID)
		preds = append(preds, Predicate{DimensionPropertyID, func(l domain.Listing) bool {
			return strings.EqualFold(l.ID, id) || strings.EqualFold(l.PropertyRef, id)
		}})
	}

	if f.NearActive() {
		prefix := strings.ToLower(strings.TrimSpace(f.Near))
		preds = append(preds, Predicate{DimensionNear, func(l domain.Listing) bool {
			return l.Geohash != "" && strings.HasPrefix(l.Geohash, prefix)
		}})
	}

	return preds
}

// MatchAll - конъюнкция предикатов. Пустой список пропускает всё.
func MatchAll(preds []Predicate, l domain.Listing) bool {
	for _, p := range preds {
		if !p.Match(l) {
			return false
		}
	}
	return true
}
