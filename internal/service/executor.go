package service

import (
	"fmt"
	"strings"

	"github.com/tabula/tabula/internal/dataset"
)

// SelectLimit is the number of rows a row-listing query returns.
const SelectLimit = 5

// Behavior names a non-default execution path so callers and tests can tell
// when an intent was not executed as requested.
type Behavior string

// BehaviorAverageNotImplemented marks an Average intent that was executed as
// a row listing. The executor has no average aggregation.
const BehaviorAverageNotImplemented Behavior = "average_not_implemented"

// CountResult is the result of a Count intent.
type CountResult struct {
	Count int `json:"count" yaml:"count"`
}

// SumResult is the result of a Sum intent.
type SumResult struct {
	Total float64 `json:"total" yaml:"total"`
}

// Execution is the outcome of running an intent against a table.
type Execution struct {
	Intent QueryIntent `json:"intent" yaml:"intent"`
	// Result is a CountResult, a SumResult or a []dataset.Row.
	Result        interface{} `json:"result" yaml:"result"`
	RenderedQuery string      `json:"pseudo_sql" yaml:"pseudo_sql"`
	// MatchedCount is the number of rows passing the filters, whatever the operation.
	MatchedCount int      `json:"matched_count" yaml:"matched_count"`
	Behavior     Behavior `json:"behavior,omitempty" yaml:"behavior,omitempty"`
}

// Executor applies intents to rows.
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Execute filters rows, computes the requested aggregation and renders the
// equivalent pseudo-query.
func (x *Executor) Execute(intent QueryIntent, rows []dataset.Row) Execution {
	matched := ApplyFilters(rows, intent.Filters)

	exec := Execution{
		Intent:        intent,
		RenderedQuery: RenderQuery(intent),
		MatchedCount:  len(matched),
	}

	switch intent.Operation {
	case OpCount:
		exec.Result = CountResult{Count: len(matched)}
	case OpSum:
		var total float64
		for _, r := range matched {
			total += r.Amount
		}
		exec.Result = SumResult{Total: total}
	case OpAverage:
		exec.Result = firstRows(matched)
		exec.Behavior = BehaviorAverageNotImplemented
	default:
		exec.Result = firstRows(matched)
	}

	return exec
}

// ApplyFilters returns the rows satisfying every filter, in storage order.
// Empty filters return rows unchanged.
func ApplyFilters(rows []dataset.Row, filters FilterSet) []dataset.Row {
	if filters.IsEmpty() {
		return rows
	}

	regions := make(map[string]bool, len(filters.Region))
	for _, r := range filters.Region {
		regions[fold(r)] = true
	}
	product := fold(filters.Product)

	matched := make([]dataset.Row, 0, len(rows))
	for _, r := range rows {
		if filters.HasRegion() && !regions[fold(r.Region)] {
			continue
		}
		if filters.HasProduct() && fold(r.Product) != product {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func firstRows(rows []dataset.Row) []dataset.Row {
	out := make([]dataset.Row, min(SelectLimit, len(rows)))
	copy(out, rows)
	return out
}

// RenderQuery renders intent as a display-only query string:
//
//	SELECT {projection} FROM {table}[ WHERE {predicates}]
//
// Region predicates come before product predicates. Literal values are
// quoted, never interpolated raw.
func RenderQuery(intent QueryIntent) string {
	projection := string(intent.Operation)
	if intent.Operation == OpSelect || intent.Operation == "" {
		projection = "*"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, intent.SourceTable)

	var preds []string
	if intent.Filters.HasRegion() {
		quoted := make([]string, len(intent.Filters.Region))
		for i, r := range intent.Filters.Region {
			quoted[i] = quoteLiteral(r)
		}
		preds = append(preds, fmt.Sprintf("region IN (%s)", strings.Join(quoted, ", ")))
	}
	if intent.Filters.HasProduct() {
		preds = append(preds, fmt.Sprintf("product = %s", quoteLiteral(intent.Filters.Product)))
	}
	if len(preds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(preds, " AND "))
	}
	return sb.String()
}

func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
