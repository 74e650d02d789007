package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/middleware"
	"github.com/tabula/tabula/internal/models"
	"github.com/tabula/tabula/internal/security"
	"github.com/tabula/tabula/internal/service"
)

// QueryHandler serves the validate, explain and natural-language query endpoints.
type QueryHandler struct {
	svc          *service.QueryService
	auditLogger  *security.AuditLogger
	apiKeyHeader string
}

func NewQueryHandler(svc *service.QueryService, auditLogger *security.AuditLogger, apiKeyHeader string) *QueryHandler {
	return &QueryHandler{
		svc:          svc,
		auditLogger:  auditLogger,
		apiKeyHeader: apiKeyHeader,
	}
}

// Validate handles POST /api/v1/validate
func (h *QueryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	start := time.Now()

	res, err := h.svc.Validate(req.Query)
	if errors.Is(err, service.ErrEmptyQuery) {
		models.WriteError(w, http.StatusBadRequest, "Query is required.")
		return
	}

	h.audit(r, "validate", req.Query, start, nil, nil)
	models.WriteJSON(w, http.StatusOK, res)
}

// Explain handles POST /api/v1/explain
func (h *QueryHandler) Explain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	start := time.Now()

	res, err := h.svc.Explain(req.Query)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		models.WriteError(w, http.StatusBadRequest, "Query is required.")
		return
	case errors.Is(err, service.ErrInvalidQuery):
		h.audit(r, "explain", req.Query, start, nil, err)
		models.WriteError(w, http.StatusBadRequest, "Invalid SQL query. Cannot explain.")
		return
	}

	h.audit(r, "explain", req.Query, start, nil, nil)
	models.WriteJSON(w, http.StatusOK, res)
}

// Query handles POST /api/v1/query
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	start := time.Now()

	exec, err := h.svc.RunNaturalLanguageQuery(r.Context(), req.Query)
	if errors.Is(err, service.ErrEmptyQuery) {
		models.WriteJSON(w, http.StatusBadRequest, models.MissingQueryResponse{
			Error:   "Missing query",
			Example: models.MissingQueryExample,
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("query failed")
		h.audit(r, "query", req.Query, start, nil, err)
		models.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.audit(r, "query", req.Query, start, exec, nil)
	models.WriteJSON(w, http.StatusOK, models.NewQueryResponse(req.Query, exec))
}

// decodeQuery reads the JSON body. An empty body decodes to an empty query
// so the caller reports it as missing.
func decodeQuery(w http.ResponseWriter, r *http.Request) (models.QueryRequest, bool) {
	var req models.QueryRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return req, false
		}
	}
	req.Normalize()
	return req, true
}

func (h *QueryHandler) audit(r *http.Request, endpoint, query string, start time.Time, exec *service.Execution, err error) {
	e := security.QueryEvent{
		Endpoint:   endpoint,
		Query:      query,
		APIKey:     middleware.APIKeyFromRequest(r, h.apiKeyHeader),
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		DurationMs: time.Since(start).Milliseconds(),
		Success:    err == nil,
	}
	if exec != nil {
		e.Operation = string(exec.Intent.Operation)
		e.MatchedCount = exec.MatchedCount
	}
	if err != nil {
		e.Error = err.Error()
	}
	h.auditLogger.LogQuery(e)
}
