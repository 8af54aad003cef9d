package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// parseNumber принимает число или строку с символами валют и разделителями разрядов.
// Строка, которая после очистки не разбирается, даёт "неизвестно", а не ноль.
func parseNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseNumericString(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case ',', '_', '\'':
			continue
		}
		b.WriteRune(r)
	}
	// "$2,000/month", "1200sqft", "USD99" - единицы и коды валют по краям отбрасываются
	cleaned := strings.TrimFunc(b.String(), func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	cleaned = strings.TrimRight(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (fs fieldSet) number(keys []string) *float64 {
	for _, k := range keys {
		v, ok := fs[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if f, ok := parseNumber(v); ok {
			return &f
		}
		// строка есть, но это не число - значение неизвестно, дальше не ищем
		if _, isStr := v.(string); isStr {
			return nil
		}
	}
	return nil
}

func (fs fieldSet) year(keys []string) *int {
	f := fs.number(keys)
	if f == nil || *f != math.Trunc(*f) || *f <= 0 {
		return nil
	}
	y := int(*f)
	return &y
}
