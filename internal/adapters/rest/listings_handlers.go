package rest

import (
	"encoding/json"
	"io"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/port"
	"listings-service/internal/core/port/usecases_port"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxPatchBodyBytes - тело POST /listings/query невелико: query string и несколько ключей
const maxPatchBodyBytes = 64 << 10

type ListingsHandler struct {
	queryListingsUC usecases_port.QueryListingsUseCase
	patchQueryUC    usecases_port.PatchQueryUseCase
	getDetailsUC    usecases_port.GetListingDetailsUseCase
}

func NewListingsHandler(queryListingsUC usecases_port.QueryListingsUseCase,
	patchQueryUC usecases_port.PatchQueryUseCase,
	getDetailsUC usecases_port.GetListingDetailsUseCase) *ListingsHandler {
	return &ListingsHandler{
		queryListingsUC: queryListingsUC,
		patchQueryUC:    patchQueryUC,
		getDetailsUC:    getDetailsUC,
	}
}

// FindListings обрабатывает GET /api/v1/listings. Весь query string - это состояние выдачи.
func (h *ListingsHandler) FindListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "FindListings"})

	result, err := h.queryListingsUC.Execute(r.Context(), r.URL.RawQuery)
	if err != nil {
		if writeCatalogError(w, handlerLogger, err) {
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	handlerLogger.Debug("Listings page built", port.Fields{
		"total_found":   result.Page.TotalCount,
		"items_on_page": len(result.Page.Items),
	})
	RespondWithJSON(w, http.StatusOK, toListingsPageResponse(result))
}

// PatchQuery обрабатывает POST /api/v1/listings/query: применяет изменение ключей к текущему URL
func (h *ListingsHandler) PatchQuery(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "PatchQuery"})

	var req QueryPatchRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxPatchBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		handlerLogger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.patchQueryUC.Execute(r.Context(), strings.TrimPrefix(req.Query, "?"), req.Patch)
	if err != nil {
		if writeCatalogError(w, handlerLogger, err) {
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to apply query patch")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingsPageResponse(result))
}

// GetListingDetails обрабатывает GET /api/v1/listings/{listingID}
func (h *ListingsHandler) GetListingDetails(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))
	handlerLogger := logger.WithFields(port.Fields{
		"handler":    "GetListingDetails",
		"listing_id": listingID,
	})

	if listingID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Listing ID is required")
		return
	}

	listing, err := h.getDetailsUC.Execute(r.Context(), listingID)
	if err != nil {
		if writeCatalogError(w, handlerLogger, err) {
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve listing")
		return
	}
	if listing == nil {
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponse(*listing))
}
