package constants

// Обменник и очередь по умолчанию
const (
	ListingsExchange         = "listings_exchange"
	QueueListingsChanged     = "listings_catalog_changed"
	DeadLetterExchange       = "listings_dlx"
	ListingsChangedBatchSize = 50
)

// Ключи маршрутизации
const (
	RoutingKeyListingsChanged  = "listings.changed"
	RoutingKeyCatalogRefreshed = "listings.catalog.refreshed"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)
