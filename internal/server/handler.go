package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/common/validation"
	"trial-search/internal/models"
	"trial-search/internal/search/criteria"
	"trial-search/internal/search/execlog"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
	"trial-search/internal/search/options"
	"trial-search/internal/search/persistence"
	"trial-search/internal/search/records"
)

const maxRequestBody = 1 << 20 // 1MB, criteria payloads are small

// Dependencies carries the wired subsystem components the handler serves.
type Dependencies struct {
	Registry   *fields.Registry
	Resolver   *operators.Resolver
	Options    *options.Source
	Queries    *persistence.Service
	History    *execlog.Log
	Searcher   records.Searcher
	MaxResults int
}

// Handler creates the HTTP handler with all routes and middleware.
func Handler(deps Dependencies, log logger.Logger) http.Handler {
	h := &handler{deps: deps, logger: log.WithFields(map[string]interface{}{"component": "http-api"})}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/search/fields", h.handleListFields)
	mux.HandleFunc("GET /api/v1/search/fields/{id}/operators", h.handleFieldOperators)
	mux.HandleFunc("GET /api/v1/search/options/{category}", h.handleOptions)

	mux.HandleFunc("GET /api/v1/search/queries", h.handleListQueries)
	mux.HandleFunc("POST /api/v1/search/queries", h.handleSaveQuery)
	mux.HandleFunc("PUT /api/v1/search/queries/{id}", h.handleUpdateQuery)
	mux.HandleFunc("DELETE /api/v1/search/queries/{id}", h.handleDeleteQuery)

	mux.HandleFunc("POST /api/v1/search/run", h.handleRun)
	mux.HandleFunc("GET /api/v1/search/history", h.handleHistory)

	return applyMiddleware(mux,
		recoveryMiddleware(log),
		loggingMiddleware(log),
		requestIDMiddleware,
	)
}

type handler struct {
	deps   Dependencies
	logger logger.Logger
}

// --- Catalog Handlers ---

type fieldResponse struct {
	models.FieldDescriptor
	Operators []operators.Operator `json:"operators"`
}

func (h *handler) handleListFields(w http.ResponseWriter, r *http.Request) {
	catalog := h.deps.Registry.All()
	out := make([]fieldResponse, 0, len(catalog))
	for _, field := range catalog {
		ops, err := h.deps.Resolver.Resolve(field.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out = append(out, fieldResponse{FieldDescriptor: field, Operators: ops})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *handler) handleFieldOperators(w http.ResponseWriter, r *http.Request) {
	fieldID := r.PathValue("id")
	ops, err := h.deps.Resolver.Resolve(fieldID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":    ops,
		"default": ops[0],
	})
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	opts := h.deps.Options.Options(r.Context(), category)
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": opts})
}

// --- Saved Query Handlers ---

type saveQueryRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	QueryType   string               `json:"queryType"`
	EditingID   string               `json:"editingId"`
	Criteria    models.CriteriaModel `json:"criteria"`
}

func (h *handler) handleListQueries(w http.ResponseWriter, r *http.Request) {
	queryType := r.URL.Query().Get("type")
	if queryType == "" {
		h.writeError(w, stderrors.NewValidationFailedError("type query parameter is required"))
		return
	}

	queries, err := h.deps.Queries.List(r.Context(), queryType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": queries})
}

func (h *handler) handleSaveQuery(w http.ResponseWriter, r *http.Request) {
	var req saveQueryRequest
	if err := h.readValidated(r, saveQuerySchema(), &req); err != nil {
		h.writeError(w, err)
		return
	}

	saved, err := h.deps.Queries.Save(r.Context(), req.Criteria, req.Title, req.Description, req.QueryType, req.EditingID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": saved})
}

func (h *handler) handleUpdateQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req saveQueryRequest
	if err := h.readValidated(r, saveQuerySchema(), &req); err != nil {
		h.writeError(w, err)
		return
	}

	saved, err := h.deps.Queries.Save(r.Context(), req.Criteria, req.Title, req.Description, req.QueryType, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": saved})
}

func (h *handler) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	queryType := r.URL.Query().Get("type")
	if queryType == "" {
		h.writeError(w, stderrors.NewValidationFailedError("type query parameter is required"))
		return
	}

	if err := h.deps.Queries.Delete(r.Context(), id, queryType); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Run / History Handlers ---

type runRequest struct {
	Criteria   models.CriteriaModel `json:"criteria"`
	Limit      int                  `json:"limit"`
	QueryID    string               `json:"queryId"`
	QueryTitle string               `json:"queryTitle"`
	QueryType  models.LogSource     `json:"queryType"`
}

func (h *handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := h.readValidated(r, runQuerySchema(), &req); err != nil {
		h.writeError(w, err)
		return
	}

	normalized := criteria.Normalize(req.Criteria)
	if len(normalized) == 0 {
		h.writeError(w, stderrors.NewValidationFailedError("no complete criteria rows to run"))
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > h.deps.MaxResults {
		limit = h.deps.MaxResults
	}

	result, err := h.deps.Searcher.Search(r.Context(), normalized, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	source := req.QueryType
	if source == "" {
		source = models.LogSourceAdvancedSearch
	}
	title := req.QueryTitle
	if strings.TrimSpace(title) == "" {
		title = summarizeCriteria(h.deps.Registry, normalized)
	}

	total := result.Total
	executedAt := time.Now().UTC()
	if _, err := h.deps.History.Append(r.Context(), models.QueryLogEntry{
		QueryID:     req.QueryID,
		QueryTitle:  title,
		ExecutedAt:  executedAt,
		Source:      source,
		Criteria:    normalized,
		ResultCount: &total,
	}); err != nil {
		// The run succeeded; a history write failure only loses the log entry.
		h.logger.Warn("failed to record execution", map[string]interface{}{"error": err.Error()})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       result.Records,
		"total":      result.Total,
		"backend":    h.deps.Searcher.Backend(),
		"executedAt": executedAt,
	})
}

type historyEntry struct {
	models.QueryLogEntry
	DaysRemaining int `json:"daysRemaining"`
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, pruned, err := h.deps.History.ReadAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntry{
			QueryLogEntry: entry,
			DaysRemaining: h.deps.History.DaysRemaining(entry),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":        out,
		"prunedCount": pruned,
	})
}

// summarizeCriteria builds a display title from the first rows when the
// caller ran an ad hoc search without naming it.
func summarizeCriteria(registry *fields.Registry, m models.CriteriaModel) string {
	parts := make([]string, 0, 3)
	for _, row := range m {
		label := row.Field
		if field, ok := registry.Lookup(row.Field); ok {
			label = field.Label
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", label, row.Operator, row.Value.First()))
		if len(parts) == 3 {
			break
		}
	}
	summary := strings.Join(parts, ", ")
	if len(m) > 3 {
		summary += ", ..."
	}
	return summary
}

// --- Health Handler ---

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// --- Helpers ---

// readValidated decodes the body once, validates the raw document against
// the schema, then unmarshals into the typed request.
func (h *handler) readValidated(r *http.Request, schema validation.JSONSchema, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return stderrors.NewValidationFailedError("failed to read request body")
	}

	var document map[string]interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return stderrors.NewValidationFailedError("invalid JSON: " + err.Error())
	}

	result, err := validation.ValidateDocument(document, schema)
	if err != nil {
		return stderrors.NewValidationFailedError(err.Error())
	}
	if !result.Valid {
		return stderrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return stderrors.NewValidationFailedError("invalid JSON: " + err.Error())
	}
	return nil
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch stderrors.CodeOf(err) {
	case stderrors.ErrCodeValidationFailed, stderrors.ErrCodeInvalidOperator, stderrors.ErrCodeUnknownField:
		status = http.StatusBadRequest
	case stderrors.ErrCodeQueryNotFound:
		status = http.StatusNotFound
	case stderrors.ErrCodeSearchTimeout:
		status = http.StatusGatewayTimeout
	case stderrors.ErrCodeSearchQueryFailed, stderrors.ErrCodeQueryExecutionFailed:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
	}

	if se, ok := err.(*stderrors.StandardError); ok {
		writeJSON(w, status, map[string]interface{}{"error": se})
		return
	}
	writeJSON(w, status, map[string]string{"error": "internal_error", "message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
