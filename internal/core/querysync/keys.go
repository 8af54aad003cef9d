package querysync

// Ключи query-строки. Отсутствие ключа означает значение по умолчанию.
const (
	KeyQuery      = "q"
	KeyLocation   = "location"
	KeyType       = "type"
	KeyMinPrice   = "minPrice"
	KeyMaxPrice   = "maxPrice"
	KeyBeds       = "beds"
	KeyBaths      = "baths"
	KeyMinSqft    = "minSqft"
	KeyMaxSqft    = "maxSqft"
	KeyYearMin    = "yearMin"
	KeyYearMax    = "yearMax"
	KeyFeatures   = "features"
	KeyStatus     = "status"
	KeySort       = "sort"
	KeyPropertyID = "propertyId"
	KeyPage       = "page"
	KeyNear       = "near"
)

// Значения ключа status
const (
	StatusForSale = "for-sale"
	StatusForRent = "for-rent"
	StatusSold    = "sold"
)

// FilterKeys - ключи, изменение которых означает смену набора фильтров
var FilterKeys = []string{
	KeyQuery, KeyLocation, KeyType, KeyMinPrice, KeyMaxPrice, KeyBeds, KeyBaths,
	KeyMinSqft, KeyMaxSqft, KeyYearMin, KeyYearMax, KeyFeatures, KeyStatus, KeyPropertyID, KeyNear,
}
