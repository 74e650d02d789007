package models

import (
	"fmt"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/service"
)

// MissingQueryExample is the hint returned with a missing question.
const MissingQueryExample = "Try: 'Show total sales in North region last month'"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status" yaml:"status"`
	Version string            `json:"version" yaml:"version"`
	Checks  map[string]string `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// MissingQueryResponse is returned by POST /api/v1/query when the question is blank.
type MissingQueryResponse struct {
	Error   string `json:"error" yaml:"error"`
	Example string `json:"example" yaml:"example"`
}

// QueryResponse is returned by POST /api/v1/query
type QueryResponse struct {
	Question     string              `json:"question" yaml:"question"`
	Result       interface{}         `json:"result" yaml:"result"`
	Explanation  string              `json:"explanation" yaml:"explanation"`
	PseudoSQL    string              `json:"pseudo_sql" yaml:"pseudo_sql"`
	MatchedCount int                 `json:"matched_count" yaml:"matched_count"`
	Intent       service.QueryIntent `json:"intent" yaml:"intent"`
	Behavior     service.Behavior    `json:"behavior,omitempty" yaml:"behavior,omitempty"`
}

// NewQueryResponse builds the response for an executed question.
func NewQueryResponse(question string, exec *service.Execution) QueryResponse {
	return QueryResponse{
		Question:     question,
		Result:       exec.Result,
		Explanation:  fmt.Sprintf("Found %d records matching your criteria", exec.MatchedCount),
		PseudoSQL:    exec.RenderedQuery,
		MatchedCount: exec.MatchedCount,
		Intent:       exec.Intent,
		Behavior:     exec.Behavior,
	}
}

// TablesResponse is returned by GET /api/v1/tables
type TablesResponse struct {
	Tables []dataset.TableInfo `json:"tables" yaml:"tables"`
	Count  int                 `json:"count" yaml:"count"`
}

// TableResponse is returned by GET /api/v1/tables/{table}
type TableResponse struct {
	dataset.TableInfo `yaml:",inline"`
	Rows []dataset.Row `json:"rows,omitempty" yaml:"rows,omitempty"`
}
