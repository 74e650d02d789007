package tools

import (
	"context"
	"fmt"
	"strings"
)

// TableSchemaTool returns the columns and row count of a table.
func TableSchemaTool(c Catalog) Tool {
	return Tool{
		Name:        "get_table_schema",
		Description: "Get the schema (column names and types) and row count of a table. Use this to see which columns can be filtered on.",
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

			info, err := c.Table(table)
			if err != nil {
				return "", fmt.Errorf("get schema: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Table: %s\nRows: %d\nSchema:\n", info.Name, info.RowCount)
			for _, f := range info.Schema {
				fmt.Fprintf(&b, "  - %s (%s)\n", f.Name, f.Type)
			}
			return b.String(), nil
		},
	}
}

// ListTablesTool lists the registered tables.
func ListTablesTool(c Catalog) Tool {
	return Tool{
		Name:        "list_tables",
		Description: "List all tables that questions can be answered from.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			var b strings.Builder
			b.WriteString("Tables:\n")
			for _, t := range c.Tables() {
				fmt.Fprintf(&b, "  - %s (rows: %d)\n", t.Name, t.RowCount)
			}
			return b.String(), nil
		},
	}
}
