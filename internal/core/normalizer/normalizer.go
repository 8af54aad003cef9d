// Package normalizer приводит разнородные записи внешнего источника к единой форме domain.Listing.
// Все синонимы полей разрешаются здесь, дальше по конвейеру работают только с каноническими полями.
package normalizer

import (
	"encoding/json"
	"fmt"
	"listings-service/internal/core/domain"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision - длина геохеша (~150 м)
const GeohashPrecision = 7

// listingNamespace - пространство имён для детерминированных id записей без идентификатора
var listingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("listings-service/listing"))

// Normalize никогда не паникует и не возвращает ошибку: всё, что не удалось
// разобрать, остаётся незаданным.
func Normalize(raw domain.RawRecord) domain.Listing {
	fs := newFieldSet(raw)

	listing := domain.Listing{
		ID:          fs.text(idKeys),
		PropertyRef: fs.text(propertyRefKeys),
		Title:       fs.text(titleKeys),
		Description: fs.text(descriptionKeys),
		City:        titleIfUniform(fs.text(cityKeys)),
		Address:     fs.text(addressKeys),
		State:       fs.text(stateKeys),
		Country:     fs.text(countryKeys),

		Price:      fs.number(priceKeys),
		Bedrooms:   fs.number(bedroomKeys),
		Bathrooms:  fs.number(bathroomKeys),
		SizeInSqFt: fs.number(sizeKeys),
		YearBuilt:  fs.year(yearBuiltKeys),

		Category:  CanonicalCategory(fs.text(categoryKeys)),
		Amenities: amenities(fs),

		ListingMode: deriveListingMode(fs),
	}

	if listing.ID == "" {
		listing.ID = fallbackID(raw)
	}

	lat, lng := fs.number(latitudeKeys), fs.number(longitudeKeys)
	if lat != nil && lng != nil && validCoordinates(*lat, *lng) {
		listing.Latitude, listing.Longitude = lat, lng
		listing.Geohash = geohash.EncodeWithPrecision(*lat, *lng, GeohashPrecision)
	}

	return listing
}

// NormalizeAll - каждой сырой записи соответствует ровно одно объявление
func NormalizeAll(raws []domain.RawRecord) []domain.Listing {
	out := make([]domain.Listing, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw)
	}
	return out
}

// fallbackID строит стабильный id из содержимого записи.
// json.Marshal сортирует ключи map, поэтому результат детерминирован.
func fallbackID(raw domain.RawRecord) string {
	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte(fmt.Sprint(map[string]interface{}(raw)))
	}
	return uuid.NewSHA1(listingNamespace, payload).String()
}

func validCoordinates(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// amenities принимает массив строк, строку с разделителями или объект вида {"pool": true}
func amenities(fs fieldSet) []string {
	v, ok := fs.lookup(amenityKeys)
	if !ok {
		return nil
	}

	var items []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s := scalarText(item); s != "" {
				items = append(items, s)
			}
		}
	case []string:
		items = t
	case string:
		items = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	case map[string]interface{}:
		for name, flag := range t {
			if b, ok := flag.(bool); ok && b {
				items = append(items, name)
			}
		}
		sort.Strings(items)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = collapseSpaces(item)
		if item == "" || containsFold(out, item) {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsFold(values []string, v string) bool {
	for _, existing := range values {
		if strings.EqualFold(existing, v) {
			return true
		}
	}
	return false
}
