package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/service"
)

var regionName = regexp.MustCompile(`^[a-z ]+$`)

type rawIntent struct {
	Operation string   `json:"operation"`
	Regions   []string `json:"regions"`
	Product   string   `json:"product"`
}

// parseIntentResponse decodes a model reply into an intent for table. Values
// the lexical extractor could never produce are rejected.
func parseIntentResponse(response, table string) (service.QueryIntent, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var raw rawIntent
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return service.QueryIntent{}, fmt.Errorf("failed to parse intent response: %w (response: %.200s)", err, response)
	}

	op, err := service.ParseOperation(raw.Operation)
	if err != nil {
		return service.QueryIntent{}, err
	}

	var filters service.FilterSet
	for _, r := range raw.Regions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !regionName.MatchString(r) {
			return service.QueryIntent{}, fmt.Errorf("invalid region %q", r)
		}
		filters.Region = append(filters.Region, r)
	}

	if p := strings.ToLower(strings.TrimSpace(raw.Product)); p != "" {
		if !slices.ContainsFunc(dataset.Products, func(known string) bool { return strings.EqualFold(known, p) }) {
			return service.QueryIntent{}, fmt.Errorf("unknown product %q", p)
		}
		filters.Product = p
	}

	return service.QueryIntent{SourceTable: table, Operation: op, Filters: filters}, nil
}
