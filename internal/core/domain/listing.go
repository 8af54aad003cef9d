package domain

import "strings"

// RawRecord - запись в том виде, в каком её отдаёт внешний источник.
// Набор полей не гарантирован, типы значений тоже.
type RawRecord map[string]interface{}

// ListingMode - тип сделки, выведенный из исходной записи
type ListingMode string

const (
	ListingModeBuy     ListingMode = "Buy"
	ListingModeRent    ListingMode = "Rent"
	ListingModeUnknown ListingMode = "Unknown"
	// ListingModeAll используется только в фильтре и означает отсутствие ограничения
	ListingModeAll ListingMode = "All"
)

// Listing - нормализованное объявление. Создаётся нормализатором и дальше
// по конвейеру не изменяется. Пустая строка и nil означают "значение неизвестно".
type Listing struct {
	ID          string
	PropertyRef string

	Title       string
	Description string
	City        string
	Address     string
	State       string
	Country     string

	Price      *float64
	Bedrooms   *float64
	Bathrooms  *float64
	SizeInSqFt *float64
	YearBuilt  *int

	Category  string
	Amenities []string

	Latitude  *float64
	Longitude *float64
	Geohash   string

	ListingMode ListingMode
}

// PriceOrZero возвращает цену, неизвестная цена считается нулевой (для сортировки)
func (l Listing) PriceOrZero() float64 {
	if l.Price == nil {
		return 0
	}
	return *l.Price
}

func (l Listing) BedroomsOrZero() float64 {
	if l.Bedrooms == nil {
		return 0
	}
	return *l.Bedrooms
}

func (l Listing) BathroomsOrZero() float64 {
	if l.Bathrooms == nil {
		return 0
	}
	return *l.Bathrooms
}

func (l Listing) YearBuiltOrZero() int {
	if l.YearBuilt == nil {
		return 0
	}
	return *l.YearBuilt
}

// HasAmenity сравнивает без учёта регистра
func (l Listing) HasAmenity(name string) bool {
	for _, a := range l.Amenities {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// SearchFields - поля, по которым идёт полнотекстовый поиск
func (l Listing) SearchFields() []string {
	return []string{l.Title, l.Description, l.Address, l.City, l.State, l.Country, l.PropertyRef, l.ID}
}
