package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OperationKind is the aggregation a question asks for. The string value is
// the name used as projection in the rendered pseudo-query.
type OperationKind string

const (
	OpSelect  OperationKind = "SELECT"
	OpCount   OperationKind = "COUNT"
	OpSum     OperationKind = "SUM"
	OpAverage OperationKind = "AVG"
)

// ErrUnknownOperation is returned by ParseOperation for names outside the
// OperationKind set.
var ErrUnknownOperation = errors.New("unknown operation")

// ParseOperation maps an operation name to its OperationKind, ignoring case
// and surrounding space. A blank name means OpSelect.
func ParseOperation(name string) (OperationKind, error) {
	switch op := OperationKind(strings.ToUpper(strings.TrimSpace(name))); op {
	case "":
		return OpSelect, nil
	case OpSelect, OpCount, OpSum, OpAverage:
		return op, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownOperation, name)
}

// Filter keys. Extraction never produces any other key.
const (
	FilterRegion  = "region"
	FilterProduct = "product"
)

// FilterSet constrains which rows take part in an aggregation. Filters are
// AND-combined; a nil Region or empty Product leaves that field unconstrained.
type FilterSet struct {
	Region  []string `json:"region,omitempty" yaml:"region,omitempty"`
	Product string   `json:"product,omitempty" yaml:"product,omitempty"`
}

// HasRegion reports whether a region filter is set.
func (f FilterSet) HasRegion() bool { return f.Region != nil }

// HasProduct reports whether a product filter is set.
func (f FilterSet) HasProduct() bool { return f.Product != "" }

// IsEmpty returns true if no filters are set.
func (f FilterSet) IsEmpty() bool { return !f.HasRegion() && !f.HasProduct() }

// Keys returns the active filter keys in rendering order.
func (f FilterSet) Keys() []string {
	var keys []string
	if f.HasRegion() {
		keys = append(keys, FilterRegion)
	}
	if f.HasProduct() {
		keys = append(keys, FilterProduct)
	}
	return keys
}

// QueryIntent is the structured form of a natural-language question.
type QueryIntent struct {
	SourceTable string        `json:"source_table" yaml:"source_table"`
	Operation   OperationKind `json:"operation" yaml:"operation"`
	Filters     FilterSet     `json:"filters" yaml:"filters"`
}

// fold lower-cases s for case-insensitive matching. A Caser is not safe for
// concurrent use, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
