package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/models"
)

const maxTableLimit = 1000

// TablesHandler handles catalog endpoints
type TablesHandler struct {
	catalog *dataset.Catalog
}

func NewTablesHandler(catalog *dataset.Catalog) *TablesHandler {
	return &TablesHandler{catalog: catalog}
}

// ListTables handles GET /api/v1/tables
func (h *TablesHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables := h.catalog.Tables()
	models.WriteJSON(w, http.StatusOK, models.TablesResponse{
		Tables: tables,
		Count:  len(tables),
	})
}

// GetTable handles GET /api/v1/tables/{table}. A positive limit query
// parameter also returns up to that many rows.
func (h *TablesHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			models.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = min(n, maxTableLimit)
	}

	info, err := h.catalog.Table(name)
	if errors.Is(err, dataset.ErrUnknownTable) {
		models.WriteError(w, http.StatusNotFound, "table not found: "+name)
		return
	}
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "failed to load table: "+err.Error())
		return
	}

	resp := models.TableResponse{TableInfo: info}
	if limit > 0 {
		rows, err := h.catalog.GetAllRows(name)
		if err != nil {
			models.WriteError(w, http.StatusInternalServerError, "failed to load table: "+err.Error())
			return
		}
		resp.Rows = rows[:min(limit, len(rows))]
	}
	models.WriteJSON(w, http.StatusOK, resp)
}
