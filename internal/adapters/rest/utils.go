package rest

import (
	"encoding/json"
	"errors"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"net/http"
	"strconv"
)

// retryAfterSeconds - подсказка клиенту, когда повторить запрос, пока каталог загружается
const retryAfterSeconds = 2

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeCatalogError переводит ошибки каталога в HTTP-ответ.
// Возвращает false, если ошибка не относится к каталогу.
func writeCatalogError(w http.ResponseWriter, logger port.LoggerPort, err error) bool {
	switch {
	case errors.Is(err, domain.ErrCatalogLoading):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		RespondWithJSON(w, http.StatusAccepted, ErrorResponse{Error: "Listings are loading", Retryable: true})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		logger.Error("Catalog unavailable", err, nil)
		RespondWithJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Listings source is unavailable", Retryable: true})
	case errors.Is(err, domain.ErrListingNotFound):
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
	default:
		return false
	}
	return true
}
