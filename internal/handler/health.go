package handler

import (
	"net/http"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/models"
)

const version = "1.0.0"

// HealthHandler handles GET /health with dataset and agent checks
type HealthHandler struct {
	source     dataset.Source
	table      string
	llmEnabled bool
}

func NewHealthHandler(source dataset.Source, table string, llmEnabled bool) *HealthHandler {
	return &HealthHandler{source: source, table: table, llmEnabled: llmEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	if _, err := h.source.GetAllRows(h.table); err != nil {
		checks["dataset"] = "unavailable: " + err.Error()
		overallStatus = "degraded"
	} else {
		checks["dataset"] = "ok"
	}

	if h.llmEnabled {
		checks["intent_agent"] = "enabled"
	} else {
		checks["intent_agent"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
