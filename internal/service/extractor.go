package service

import (
	"regexp"
	"strings"
)

// operationCue maps a phrase to the operation it implies.
type operationCue struct {
	phrase string
	op     OperationKind
}

// operationCues are checked in order and every match overwrites the previous
// one, so the last matching cue in this list wins.
var operationCues = []operationCue{
	{phrase: "how many", op: OpCount},
	{phrase: "total", op: OpSum},
	{phrase: "average", op: OpAverage},
}

var (
	regionPattern   = regexp.MustCompile(`in\s+([a-z\s,]+)`)
	regionSeparator = regexp.MustCompile(`\s+and\s+|\s+or\s+|,`)
	productPattern  = regexp.MustCompile(`\b(laptop|phone|tablet)s?\b`)
)

// IntentExtractor turns a natural-language question into a QueryIntent using
// lexical cues. It is a best-effort heuristic: it never fails and resolves
// ambiguous phrasing through cue priority.
type IntentExtractor struct {
	table string
}

// NewIntentExtractor creates an extractor whose intents target table.
func NewIntentExtractor(table string) *IntentExtractor {
	return &IntentExtractor{table: table}
}

// Extract builds the full intent for text.
func (e *IntentExtractor) Extract(text string) QueryIntent {
	lower := fold(text)
	return QueryIntent{
		SourceTable: e.table,
		Operation:   classify(lower),
		Filters:     extractFilters(lower),
	}
}

// Classify infers the operation text asks for.
func (e *IntentExtractor) Classify(text string) OperationKind {
	return classify(fold(text))
}

// ExtractFilters infers region and product filters from text.
func (e *IntentExtractor) ExtractFilters(text string) FilterSet {
	return extractFilters(fold(text))
}

func classify(lower string) OperationKind {
	op := OpSelect
	for _, cue := range operationCues {
		if strings.Contains(lower, cue.phrase) {
			op = cue.op
		}
	}
	return op
}

func extractFilters(lower string) FilterSet {
	var f FilterSet

	if m := regionPattern.FindStringSubmatch(lower); m != nil {
		var regions []string
		for _, part := range regionSeparator.Split(m[1], -1) {
			if r := strings.TrimSpace(part); r != "" {
				regions = append(regions, r)
			}
		}
		f.Region = regions
	}

	if m := productPattern.FindStringSubmatch(lower); m != nil {
		f.Product = m[1]
	}

	return f
}
