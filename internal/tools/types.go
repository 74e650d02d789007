// Package tools defines the Tool type and the dataset tools the intent agent
// may call while translating a question.
package tools

import (
	"context"

	"github.com/tabula/tabula/internal/dataset"
)

// Tool represents a callable function the LLM can invoke
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Execute     func(ctx context.Context, input map[string]interface{}) (string, error)
}

// Catalog is the subset of dataset.Catalog the tools read from.
type Catalog interface {
	dataset.Source
	Tables() []dataset.TableInfo
	Table(name string) (dataset.TableInfo, error)
}

// DatasetTools returns every read-only dataset tool backed by c.
func DatasetTools(c Catalog) []Tool {
	return []Tool{
		ListTablesTool(c),
		TableSchemaTool(c),
		SampleRowsTool(c),
	}
}
