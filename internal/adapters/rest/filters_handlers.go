package rest

import (
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/port"
	"listings-service/internal/core/port/usecases_port"
	"net/http"
)

type FilterHandler struct {
	getFilterOptionsUC usecases_port.GetFilterOptionsUseCase
}

func NewFilterHandler(getFilterOptionsUC usecases_port.GetFilterOptionsUseCase) *FilterHandler {
	return &FilterHandler{getFilterOptionsUC: getFilterOptionsUC}
}

// GetFilterOptions обрабатывает GET /api/v1/filters/options
func (h *FilterHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetFilterOptions"})

	options, err := h.getFilterOptionsUC.Execute(r.Context())
	if err != nil {
		if writeCatalogError(w, logger, err) {
			return
		}
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to get filter options")
		return
	}

	RespondWithJSON(w, http.StatusOK, toFilterOptionsResponse(options))
}
