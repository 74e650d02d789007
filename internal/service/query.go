package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/security"
)

var (
	// ErrEmptyQuery is returned for blank or missing query text.
	ErrEmptyQuery = errors.New("query is required")
	// ErrInvalidQuery is returned by Explain for text the grammar rejects.
	ErrInvalidQuery = errors.New("invalid SQL query")
)

// IntentTranslator is an alternative source of intents, e.g. an LLM.
type IntentTranslator interface {
	Translate(ctx context.Context, question string) (QueryIntent, error)
}

// ValidationResult is returned by Validate.
type ValidationResult struct {
	Valid   bool   `json:"valid" yaml:"valid"`
	Message string `json:"message" yaml:"message"`
}

// ExplainResult is returned by Explain.
type ExplainResult struct {
	Query       string `json:"query" yaml:"query"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// QueryService exposes the three query operations over a dataset source.
type QueryService struct {
	table      string
	source     dataset.Source
	validator  *security.SQLValidator
	extractor  *IntentExtractor
	executor   *Executor
	explainer  *Explainer
	translator IntentTranslator
}

// Option configures a QueryService.
type Option func(*QueryService)

// WithTranslator makes the service ask t for intents before falling back to
// the lexical extractor.
func WithTranslator(t IntentTranslator) Option {
	return func(s *QueryService) {
		s.translator = t
	}
}

// NewQueryService creates a service answering questions about table.
func NewQueryService(source dataset.Source, table string, opts ...Option) *QueryService {
	s := &QueryService{
		table:     table,
		source:    source,
		validator: security.NewSQLValidator(),
		extractor: NewIntentExtractor(table),
		executor:  NewExecutor(),
		explainer: NewExplainer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks text against the statement grammar. A grammar failure is
// not an error; only blank input is.
func (s *QueryService) Validate(text string) (ValidationResult, error) {
	if strings.TrimSpace(text) == "" {
		return ValidationResult{}, ErrEmptyQuery
	}
	if s.validator.Valid(text) {
		return ValidationResult{Valid: true, Message: "Valid SQL query."}, nil
	}
	return ValidationResult{Valid: false, Message: "Invalid SQL query."}, nil
}

// Explain describes a statement that passes the grammar.
func (s *QueryService) Explain(text string) (ExplainResult, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return ExplainResult{}, ErrEmptyQuery
	}
	if !s.validator.Valid(query) {
		return ExplainResult{}, ErrInvalidQuery
	}
	return ExplainResult{Query: query, Explanation: s.explainer.Explain(query)}, nil
}

// Intent returns the intent for question. Translator failures fall back to
// the lexical extractor, so this never fails.
func (s *QueryService) Intent(ctx context.Context, question string) QueryIntent {
	if s.translator != nil {
		intent, err := s.translator.Translate(ctx, question)
		if err == nil {
			intent.SourceTable = s.table
			return intent
		}
		log.Warn().Err(err).Msg("intent translator failed, using lexical extractor")
	}
	return s.extractor.Extract(question)
}

// RunNaturalLanguageQuery extracts an intent from question and executes it.
func (s *QueryService) RunNaturalLanguageQuery(ctx context.Context, question string) (*Execution, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuery
	}

	intent := s.Intent(ctx, question)
	rows, err := s.source.GetAllRows(intent.SourceTable)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}

	exec := s.executor.Execute(intent, rows)
	log.Debug().
		Str("operation", string(intent.Operation)).
		Strs("filters", intent.Filters.Keys()).
		Int("matched", exec.MatchedCount).
		Str("pseudo_sql", exec.RenderedQuery).
		Msg("query executed")
	return &exec, nil
}
