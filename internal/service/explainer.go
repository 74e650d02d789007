package service

import (
	"regexp"
	"strings"
)

const genericExplanation = "This query retrieves data from the database."

// explainRules are tried in order; the first matching shape wins.
var explainRules = []struct {
	pattern     *regexp.Regexp
	explanation string
}{
	{regexp.MustCompile(`(?i)^SELECT\s+\*\s+FROM`), "This query selects all columns from the specified table."},
	{regexp.MustCompile(`(?i)^SELECT\s+.+\s+FROM`), "This query selects specific columns from the specified table."},
	{regexp.MustCompile(`(?i)^INSERT`), "This query inserts new records into the specified table."},
	{regexp.MustCompile(`(?i)^UPDATE`), "This query updates existing records in the specified table."},
	{regexp.MustCompile(`(?i)^DELETE`), "This query deletes records from the specified table."},
}

// Explainer describes a validated statement by its syntactic shape only.
type Explainer struct{}

func NewExplainer() *Explainer {
	return &Explainer{}
}

// Explain returns a canned description of sql. Callers must validate sql
// first; unrecognised shapes get a generic description.
func (e *Explainer) Explain(sql string) string {
	sql = strings.TrimSpace(sql)
	for _, rule := range explainRules {
		if rule.pattern.MatchString(sql) {
			return rule.explanation
		}
	}
	return genericExplanation
}
