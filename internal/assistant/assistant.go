package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asksql/asksql/internal/archive"
	"github.com/asksql/asksql/internal/datastore"
	"github.com/asksql/asksql/internal/nl2sql"
	"github.com/asksql/asksql/internal/observability"
	"github.com/asksql/asksql/internal/schema"
)

var (
	ErrEmptyQuestion       = errors.New("question is required")
	ErrSchemaFetch         = errors.New("schema introspection failed")
	ErrTranslate           = errors.New("sql generation failed")
	ErrStatementNotAllowed = errors.New("only SELECT/WITH statements are allowed")
)

// ExecutionError is returned when the generated statement fails in the
// datastore. It carries the statement that was run.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute generated query: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

type SQLGenerator interface {
	Generate(ctx context.Context, question string, description schema.Description) (nl2sql.Result, error)
}

type Archiver interface {
	Archive(ctx context.Context, record archive.Record) error
}

type Config struct {
	Schema    schema.Source
	Generator SQLGenerator
	Executor  datastore.Executor
	// Archiver is optional.
	Archiver Archiver
	ReadOnly bool
	Logger   *slog.Logger
	Now      func() time.Time
}

type AskResult struct {
	Question string         `json:"question"`
	SQLQuery string         `json:"sql_query"`
	Results  datastore.Rows `json:"results"`
}

type Service struct {
	schema    schema.Source
	generator SQLGenerator
	executor  datastore.Executor
	archiver  Archiver
	readOnly  bool
	logger    *slog.Logger
	now       func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Schema == nil {
		return nil, fmt.Errorf("schema source is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("sql generator is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("query executor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		schema:    cfg.Schema,
		generator: cfg.Generator,
		executor:  cfg.Executor,
		archiver:  cfg.Archiver,
		readOnly:  cfg.ReadOnly,
		logger:    logger,
		now:       now,
	}, nil
}

// Ask answers a natural-language question: describe the schema, generate one
// statement, run it as-is and return its rows.
func (s *Service) Ask(ctx context.Context, question string) (result AskResult, err error) {
	start := time.Now()
	outcome := observability.OutcomeSuccess
	defer func() { observability.ObserveAsk(outcome, time.Since(start)) }()

	if strings.TrimSpace(question) == "" {
		outcome = observability.OutcomeRejected
		return AskResult{}, ErrEmptyQuestion
	}

	description, err := s.schema.Describe(ctx)
	if err != nil {
		outcome = observability.OutcomeSchemaError
		return AskResult{}, fmt.Errorf("%w: %w", ErrSchemaFetch, err)
	}

	generated, err := s.generator.Generate(ctx, question, description)
	if err != nil {
		outcome = observability.OutcomeCompletion
		return AskResult{}, fmt.Errorf("%w: %w", ErrTranslate, err)
	}

	if s.readOnly && !isReadOnlyStatement(generated.SQL) {
		outcome = observability.OutcomeRejected
		s.logger.WarnContext(ctx, "generated statement rejected", slog.String("sql", generated.SQL))
		return AskResult{}, &ExecutionError{SQL: generated.SQL, Err: ErrStatementNotAllowed}
	}

	rows, err := s.executor.Query(ctx, generated.SQL)
	if err != nil {
		outcome = observability.OutcomeExecutionError
		return AskResult{}, &ExecutionError{SQL: generated.SQL, Err: err}
	}

	result = AskResult{Question: question, SQLQuery: generated.SQL, Results: rows}
	s.archive(ctx, result, generated.Model)
	return result, nil
}

func (s *Service) archive(ctx context.Context, result AskResult, model string) {
	if s.archiver == nil {
		return
	}
	err := s.archiver.Archive(ctx, archive.Record{
		Question: result.Question,
		SQLQuery: result.SQLQuery,
		Model:    model,
		Results:  result.Results,
		AskedAt:  s.now(),
	})
	if err != nil {
		observability.IncrementArchiveFailure()
		s.logger.WarnContext(ctx, "archive ask failed", slog.Any("error", err))
	}
}

func isReadOnlyStatement(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	if normalized == "" {
		return false
	}
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}
