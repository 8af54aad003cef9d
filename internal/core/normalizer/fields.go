package normalizer

import (
	"fmt"
	"listings-service/internal/core/domain"
	"slices"
	"strings"
)

// Синонимы полей в нормализованном виде (нижний регистр, без "_", "-" и пробелов).
// Порядок важен: берётся первое найденное непустое значение.
var (
	idKeys          = []string{"id", "_id", "listingid", "uuid", "slug", "propertyid"}
	propertyRefKeys = []string{"propertyid", "propertyref", "reference", "ref", "refno", "listingref", "code"}
	titleKeys       = []string{"title", "name", "propertyname", "headline"}
	descriptionKeys = []string{"description", "details", "summary", "about"}
	cityKeys        = []string{"city", "town", "locality", "lga"}
	addressKeys     = []string{"address", "streetaddress", "street", "fulladdress", "location"}
	stateKeys       = []string{"state", "region", "province"}
	countryKeys     = []string{"country", "countryname"}
	priceKeys       = []string{"price", "amount", "listprice", "saleprice", "rentprice", "rent", "cost"}
	bedroomKeys     = []string{"bedrooms", "beds", "bedroom", "bedroomcount", "noofbedrooms", "numberofbedrooms"}
	bathroomKeys    = []string{"bathrooms", "baths", "bathroom", "bathroomcount", "noofbathrooms", "numberofbathrooms", "toilets"}
	sizeKeys        = []string{"sizeinsqft", "squarefeet", "sqft", "areasqft", "size", "area", "floorarea"}
	categoryKeys    = []string{"category", "propertytype", "type", "kind"}
	amenityKeys     = []string{"amenities", "features", "facilities"}
	yearBuiltKeys   = []string{"yearbuilt", "builtyear", "constructionyear", "yearofconstruction", "built"}
	latitudeKeys    = []string{"latitude", "lat"}
	longitudeKeys   = []string{"longitude", "lng", "lon", "long"}
)

// containerKeys - вложенные объекты, чьи поля поднимаются на верхний уровень, в порядке приоритета.
// Прочие объекты (agent, owner, contact) не раскрываются: их id и name не относятся к объявлению.
var containerKeys = []string{"location", "address", "details", "property", "attributes", "specs", "price"}

// fieldSet - поля сырой записи с нормализованными ключами.
// Вложенные объекты из containerKeys раскрываются на один уровень,
// при этом поля верхнего уровня имеют приоритет.
type fieldSet map[string]interface{}

func newFieldSet(raw domain.RawRecord) fieldSet {
	fs := make(fieldSet, len(raw))
	fs.merge(raw)
	for _, ck := range containerKeys {
		if m, ok := fs[ck].(map[string]interface{}); ok {
			fs.merge(m)
		}
	}
	return fs
}

// merge добавляет отсутствующие поля. Если несколько ключей сводятся к одному
// ("price" и "Price"), побеждает записанный в нижнем регистре, затем - первый по алфавиту.
func (fs fieldSet) merge(m map[string]interface{}) {
	for _, k := range orderedKeys(m) {
		key := normalizeKey(k)
		if _, exists := fs[key]; !exists {
			fs[key] = m[k]
		}
	}
}

func orderedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		la, lb := a == strings.ToLower(a), b == strings.ToLower(b)
		switch {
		case la && !lb:
			return -1
		case lb && !la:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func normalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	// "_id" должен остаться отличимым от "id"
	if strings.HasPrefix(k, "_") && b.String() == "id" {
		return "_id"
	}
	return b.String()
}

// lookup возвращает первое значение, которое не nil и не пустая строка
func (fs fieldSet) lookup(keys []string) (interface{}, bool) {
	for _, k := range keys {
		v, ok := fs[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// text возвращает строковое значение поля. Числа форматируются, объекты и массивы пропускаются.
func (fs fieldSet) text(keys []string) string {
	for _, k := range keys {
		v, ok := fs[k]
		if !ok || v == nil {
			continue
		}
		if s := scalarText(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return collapseSpaces(t)
	case map[string]interface{}, []interface{}:
		return ""
	case bool:
		return ""
	default:
		return collapseSpaces(fmt.Sprint(t))
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
