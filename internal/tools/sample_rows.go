package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

const sampleRowCount = 3

// SampleRowsTool fetches a few rows from a table so the agent can see the
// actual spelling of product and region values.
func SampleRowsTool(c Catalog) Tool {
	return Tool{
		Name:        "get_sample_rows",
		Description: "Get 3 sample rows from a table to understand actual data values and formats.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"table": map[string]interface{}{
					"type":        "string",
					"description": "The table name",
				},
			},
			"required": []string{"table"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			table, _ := input["table"].(string)
			if table == "" {
				return "", fmt.Errorf("table is required")
			}

			rows, err := c.GetAllRows(table)
			if err != nil {
				return "", fmt.Errorf("sample rows: %w", err)
			}

			out := map[string]interface{}{
				"table":  table,
				"sample": rows[:min(sampleRowCount, len(rows))],
				"note":   "These are sample rows only.",
			}
			b, err := json.Marshal(out)
			if err != nil {
				return "", fmt.Errorf("marshal sample: %w", err)
			}
			return string(b), nil
		},
	}
}
