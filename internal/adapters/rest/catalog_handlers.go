package rest

import (
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/port"
	"listings-service/internal/core/port/usecases_port"
	"net/http"
)

type CatalogHandler struct {
	refreshUC usecases_port.RefreshCatalogUseCase
	statusUC  usecases_port.GetCatalogStatusUseCase
}

func NewCatalogHandler(refreshUC usecases_port.RefreshCatalogUseCase, statusUC usecases_port.GetCatalogStatusUseCase) *CatalogHandler {
	return &CatalogHandler{refreshUC: refreshUC, statusUC: statusUC}
}

// GetStatus обрабатывает GET /api/v1/catalog/status
func (h *CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, toCatalogStatusResponse(h.statusUC.Execute(r.Context())))
}

// Refresh обрабатывает POST /api/v1/listings/refresh: синхронно перечитывает источник
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RefreshCatalog"})

	state, err := h.refreshUC.Execute(r.Context())
	if err != nil {
		logger.Error("Catalog refresh failed", err, nil)
		resp := struct {
			ErrorResponse
			Catalog *CatalogStatusResponse `json:"catalog,omitempty"`
		}{
			ErrorResponse: ErrorResponse{Error: "Listings source is unavailable", Retryable: true},
		}
		if state != nil {
			st := toCatalogStatusResponse(*state)
			resp.Catalog = &st
		}
		RespondWithJSON(w, http.StatusBadGateway, resp)
		return
	}

	RespondWithJSON(w, http.StatusOK, toCatalogStatusResponse(*state))
}
