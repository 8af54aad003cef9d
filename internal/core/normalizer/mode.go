package normalizer

import (
	"listings-service/internal/core/domain"
	"strings"
	"unicode"
)

// Поля, в которых ищется признак типа сделки, в порядке убывания надёжности
var modeKeys = []string{
	"listingmode", "listingtype", "dealtype", "purpose", "offertype", "transactiontype",
	"status", "mode", "type", "category", "tags", "title",
}

var (
	rentFlagKeys = []string{"forrent", "isrent", "isrental", "forlease"}
	buyFlagKeys  = []string{"forsale", "isforsale", "issale"}
)

var (
	rentWords = map[string]struct{}{"rent": {}, "rental": {}, "rentals": {}, "renting": {}, "lease": {}, "leasing": {}, "tolet": {}}
	buyWords  = map[string]struct{}{"buy": {}, "sale": {}, "sell": {}, "selling": {}, "purchase": {}, "forsale": {}}
)

// deriveListingMode - эвристика: первое поле с однозначным признаком определяет режим.
// Если признаков нет или они противоречат друг другу во всех полях - Unknown.
func deriveListingMode(fs fieldSet) domain.ListingMode {
	for _, k := range rentFlagKeys {
		if b, ok := fs[k].(bool); ok && b {
			return domain.ListingModeRent
		}
	}
	for _, k := range buyFlagKeys {
		if b, ok := fs[k].(bool); ok && b {
			return domain.ListingModeBuy
		}
	}

	for _, k := range modeKeys {
		v, ok := fs[k]
		if !ok {
			continue
		}
		if mode := modeFromValue(v); mode != domain.ListingModeUnknown {
			return mode
		}
	}
	return domain.ListingModeUnknown
}

func modeFromValue(v interface{}) domain.ListingMode {
	var texts []string
	switch t := v.(type) {
	case string:
		texts = []string{t}
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				texts = append(texts, s)
			}
		}
	case []string:
		texts = t
	}

	rent, buy := false, false
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
		for _, w := range words {
			if _, ok := rentWords[w]; ok {
				rent = true
			}
			if _, ok := buyWords[w]; ok {
				buy = true
			}
		}
	}

	switch {
	case rent && !buy:
		return domain.ListingModeRent
	case buy && !rent:
		return domain.ListingModeBuy
	default:
		return domain.ListingModeUnknown
	}
}
