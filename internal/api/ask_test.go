package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asksql/asksql/internal/assistant"
	"github.com/asksql/asksql/internal/datastore"
)

func TestAskReturnsResult(t *testing.T) {
	asker := &fakeAsker{result: assistant.AskResult{
		Question: "¿Cuántos usuarios tenemos en total?",
		SQLQuery: "SELECT COUNT(*) FROM users;",
		Results: datastore.Rows{
			Columns: []string{"COUNT(*)"},
			Records: []datastore.Record{datastore.NewRecord([]string{"COUNT(*)"}, []any{int64(42)})},
		},
	}}
	rr := serveAsk(t, asker, `{"question":"¿Cuántos usuarios tenemos en total?"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if asker.question != "¿Cuántos usuarios tenemos en total?" {
		t.Fatalf("question = %q", asker.question)
	}
	body := decodeBody(t, rr)
	if body["sql_query"] != "SELECT COUNT(*) FROM users;" {
		t.Fatalf("sql_query = %v", body["sql_query"])
	}
	results, ok := body["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("results = %#v", body["results"])
	}
	if results[0].(map[string]any)["COUNT(*)"] != float64(42) {
		t.Fatalf("row = %#v", results[0])
	}
}

func TestAskRejectsInvalidBodies(t *testing.T) {
	tests := []struct {
		body string
		code string
	}{
		{body: `{`, code: "INVALID_JSON"},
		{body: `{"question":"q","extra":1}`, code: "INVALID_JSON"},
		{body: `{"question":"   "}`, code: "QUESTION_REQUIRED"},
		{body: `{}`, code: "QUESTION_REQUIRED"},
	}
	for _, tt := range tests {
		asker := &fakeAsker{}
		rr := serveAsk(t, asker, tt.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", tt.body, rr.Code)
		}
		if got := decodeBody(t, rr)["error_code"]; got != tt.code {
			t.Fatalf("body %s: error_code = %v, want %s", tt.body, got, tt.code)
		}
		if asker.calls != 0 {
			t.Fatalf("body %s: asker should not be called", tt.body)
		}
	}
}

func TestAskMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "schema",
			err:    fmt.Errorf("%w: %w", assistant.ErrSchemaFetch, errors.New("connection refused")),
			status: http.StatusInternalServerError,
			code:   "SCHEMA_FETCH_FAILED",
		},
		{
			name:   "translate",
			err:    fmt.Errorf("%w: %w", assistant.ErrTranslate, errors.New("429")),
			status: http.StatusBadGateway,
			code:   "TRANSLATE_FAILED",
		},
		{
			name:   "execution",
			err:    &assistant.ExecutionError{SQL: "SELECT * FROM nope;", Err: errors.New("unknown table")},
			status: http.StatusUnprocessableEntity,
			code:   "QUERY_EXECUTION_FAILED",
		},
		{
			name:   "not allowed",
			err:    &assistant.ExecutionError{SQL: "DROP TABLE users;", Err: assistant.ErrStatementNotAllowed},
			status: http.StatusForbidden,
			code:   "STATEMENT_NOT_ALLOWED",
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "ASK_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAsk(t, &fakeAsker{err: tt.err}, `{"question":"q"}`)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if got := decodeBody(t, rr)["error_code"]; got != tt.code {
				t.Fatalf("error_code = %v, want %s", got, tt.code)
			}
		})
	}
}

func TestAskExecutionFailureExposesSQL(t *testing.T) {
	rr := serveAsk(t, &fakeAsker{err: &assistant.ExecutionError{SQL: "SELECT * FROM nope;", Err: errors.New("unknown table")}}, `{"question":"q"}`)

	details, ok := decodeBody(t, rr)["context"].(map[string]any)
	if !ok {
		t.Fatalf("context missing: %s", rr.Body.String())
	}
	if details["sql_query"] != "SELECT * FROM nope;" {
		t.Fatalf("sql_query = %v", details["sql_query"])
	}
	if !strings.Contains(details["details"].(string), "unknown table") {
		t.Fatalf("details = %v", details["details"])
	}
}

func TestAskNotConfigured(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"q"}`)))

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAskRequiresPost(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Asker: &fakeAsker{}})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
}

func serveAsk(t *testing.T, asker Asker, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(loadConfig(t, nil), Dependencies{Asker: asker})
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v (body=%s)", err, rr.Body.String())
	}
	return body
}

type fakeAsker struct {
	result   assistant.AskResult
	err      error
	question string
	calls    int
}

func (f *fakeAsker) Ask(_ context.Context, question string) (assistant.AskResult, error) {
	f.calls++
	f.question = question
	return f.result, f.err
}
