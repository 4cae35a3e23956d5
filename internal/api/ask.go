package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asksql/asksql/internal/assistant"
)

const maxAskBodyBytes = 64 << 10

type askRequest struct {
	Question string `json:"question"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Asker == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "ask dependency is not configured", false, nil)
		return
	}

	var req askRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	result, err := deps.Asker.Ask(r.Context(), req.Question)
	if err != nil {
		writeAskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var execErr *assistant.ExecutionError
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		writeError(ctx, w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
	case errors.Is(err, assistant.ErrStatementNotAllowed):
		details := map[string]any{}
		if errors.As(err, &execErr) {
			details["sql_query"] = execErr.SQL
		}
		writeError(ctx, w, http.StatusForbidden, "STATEMENT_NOT_ALLOWED", assistant.ErrStatementNotAllowed.Error(), false, details)
	case errors.As(err, &execErr):
		writeError(ctx, w, http.StatusUnprocessableEntity, "QUERY_EXECUTION_FAILED", "generated query failed to execute", false, map[string]any{
			"sql_query": execErr.SQL,
			"details":   execErr.Err.Error(),
		})
	case errors.Is(err, assistant.ErrTranslate):
		writeError(ctx, w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate question", true, map[string]any{"details": err.Error()})
	case errors.Is(err, assistant.ErrSchemaFetch):
		writeError(ctx, w, http.StatusInternalServerError, "SCHEMA_FETCH_FAILED", "failed to load schema context", true, map[string]any{"details": err.Error()})
	default:
		writeError(ctx, w, http.StatusInternalServerError, "ASK_FAILED", "failed to answer question", true, map[string]any{"details": err.Error()})
	}
}
