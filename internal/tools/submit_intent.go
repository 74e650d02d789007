package tools

import (
	"context"
	"fmt"
)

// SubmitIntentName is the tool the agent calls to hand back its answer.
const SubmitIntentName = "submit_query_intent"

// SubmitIntentTool describes the structured answer the agent must give. The
// agent loop intercepts calls to it; Execute only acknowledges.
func SubmitIntentTool() Tool {
	return Tool{
		Name:        SubmitIntentName,
		Description: "Submit the structured query intent for the user's question. Call this exactly once when you know the answer.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"SELECT", "COUNT", "SUM", "AVG"},
					"description": "SELECT lists rows, COUNT counts them, SUM totals the amount, AVG averages it",
				},
				"regions": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Lower-case region names to filter on. Omit for no region filter.",
				},
				"product": map[string]interface{}{
					"type":        "string",
					"description": "Lower-case product name to filter on. Omit for no product filter.",
				},
			},
			"required": []string{"operation"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			if _, ok := input["operation"].(string); !ok {
				return "", fmt.Errorf("operation is required")
			}
			return "intent received", nil
		},
	}
}
