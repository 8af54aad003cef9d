// Package querysync - двунаправленный кодек между состоянием выдачи и query-строкой URL.
// Это единственное место, которое знает о формате сериализации.
package querysync

import (
	"fmt"
	"listings-service/internal/core/domain"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Patch - изменения query-строки: ключ → новое значение.
// Пустая строка, nil и пустая коллекция удаляют ключ.
type Patch map[string]interface{}

// ParseQuery разбирает сырую query-строку. Синтаксически битые пары пропускаются.
func ParseQuery(raw string) domain.ViewState {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(values)
}

// Parse строит состояние из query-параметров. Неизвестные и некорректные
// значения молча заменяются значениями по умолчанию.
func Parse(values url.Values) domain.ViewState {
	state := domain.DefaultViewState()
	f := state.Filters

	f.FreeText = values.Get(KeyQuery)
	if loc := values.Get(KeyLocation); strings.TrimSpace(loc) != "" {
		f.Location = loc
	}
	f.PropertyTypes = splitList(values.Get(KeyType))
	f.Amenities = splitList(values.Get(KeyFeatures))

	if v, ok := parseFloat(values.Get(KeyMinPrice)); ok {
		f.PriceRange.Min = v
	}
	if v, ok := parseFloat(values.Get(KeyMaxPrice)); ok {
		f.PriceRange.Max = v
	}
	if v, ok := parseFloat(values.Get(KeyMinSqft)); ok {
		f.SquareFeetRange.Min = v
	}
	if v, ok := parseFloat(values.Get(KeyMaxSqft)); ok {
		f.SquareFeetRange.Max = v
	}

	f.MinBedrooms = parseCount(values.Get(KeyBeds))
	f.MinBathrooms = parseCount(values.Get(KeyBaths))
	f.YearBuiltRange.Min = parseCount(values.Get(KeyYearMin))
	f.YearBuiltRange.Max = parseCount(values.Get(KeyYearMax))

	f.ListingMode = parseStatus(values.Get(KeyStatus))
	f.PropertyID = strings.TrimSpace(values.Get(KeyPropertyID))
	f.Near = strings.ToLower(strings.TrimSpace(values.Get(KeyNear)))

	state.Filters = f

	if mode, ok := domain.ParseSortMode(values.Get(KeySort)); ok {
		state.Sort = mode
	}
	if page := parseCount(values.Get(KeyPage)); page > 1 {
		state.Page.Number = page
	}
	return state
}

// FilterPatch - патч по всем ключам фильтров. Измерения в значении по умолчанию дают nil (удаление ключа).
func FilterPatch(f domain.FilterState) Patch {
	p := Patch{
		KeyQuery:      f.FreeText,
		KeyType:       f.PropertyTypes,
		KeyFeatures:   f.Amenities,
		KeyPropertyID: f.PropertyID,
		KeyNear:       f.Near,
		KeyLocation:   nil,
		KeyMinPrice:   nil,
		KeyMaxPrice:   nil,
		KeyMinSqft:    nil,
		KeyMaxSqft:    nil,
		KeyBeds:       nil,
		KeyBaths:      nil,
		KeyYearMin:    nil,
		KeyYearMax:    nil,
		KeyStatus:     nil,
	}
	if f.Location != domain.AllCities {
		p[KeyLocation] = f.Location
	}
	if f.PriceRange.Min != domain.DefaultPriceMin {
		p[KeyMinPrice] = f.PriceRange.Min
	}
	if f.PriceRange.Max != domain.DefaultPriceMax {
		p[KeyMaxPrice] = f.PriceRange.Max
	}
	if f.SquareFeetRange.Min != 0 {
		p[KeyMinSqft] = f.SquareFeetRange.Min
	}
	if f.SquareFeetRange.Max != 0 {
		p[KeyMaxSqft] = f.SquareFeetRange.Max
	}
	if f.MinBedrooms > 0 {
		p[KeyBeds] = f.MinBedrooms
	}
	if f.MinBathrooms > 0 {
		p[KeyBaths] = f.MinBathrooms
	}
	if f.YearBuiltRange.Min != 0 {
		p[KeyYearMin] = f.YearBuiltRange.Min
	}
	if f.YearBuiltRange.Max != 0 {
		p[KeyYearMax] = f.YearBuiltRange.Max
	}
	switch f.ListingMode {
	case domain.ListingModeBuy:
		p[KeyStatus] = StatusForSale
	case domain.ListingModeRent:
		p[KeyStatus] = StatusForRent
	}
	return p
}

// StatePatch - патч для полного состояния: фильтры, сортировка и страница
func StatePatch(s domain.ViewState) Patch {
	p := FilterPatch(s.Filters)
	p[KeySort] = nil
	if s.Sort != domain.SortNewest && s.Sort != "" {
		p[KeySort] = string(s.Sort)
	}
	p[KeyPage] = nil
	if s.Page.Number > 1 {
		p[KeyPage] = s.Page.Number
	}
	return p
}

// ApplyPatch применяет патч к копии query-параметров. Посторонние ключи (utm_* и т.п.) сохраняются.
func ApplyPatch(values url.Values, patch Patch) url.Values {
	next := make(url.Values, len(values)+len(patch))
	for k, v := range values {
		next[k] = append([]string(nil), v...)
	}
	for key, value := range patch {
		s, keep := stringify(value)
		if !keep {
			next.Del(key)
			continue
		}
		next.Set(key, s)
	}
	return next
}

// Encode переносит состояние в существующие query-параметры
func Encode(values url.Values, s domain.ViewState) url.Values {
	return ApplyPatch(values, StatePatch(s))
}

// CanonicalQuery - query-строка, полностью определяющая состояние
func CanonicalQuery(s domain.ViewState) string {
	return Encode(url.Values{}, s).Encode()
}

// stringify реализует правила патча. Второе значение false означает "удалить ключ".
func stringify(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return strings.Join(v, ","), true
	case []interface{}:
		if len(v) == 0 {
			return "", false
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := stringify(item); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ","), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	case *float64:
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	case *int:
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	case fmt.Stringer:
		return stringify(v.String())
	default:
		return fmt.Sprint(v), true
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return domain.CleanSet(strings.Split(s, ","))
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// parseCount - неотрицательное целое, всё остальное даёт 0
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseStatus(s string) domain.ListingMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusForSale, "buy", "sale":
		return domain.ListingModeBuy
	case StatusForRent, "rent", "lease":
		return domain.ListingModeRent
	default:
		// в модели нет режима "продано", поэтому sold не ограничивает выдачу
		return domain.ListingModeAll
	}
}
