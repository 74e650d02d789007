package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabula/tabula/internal/service"
)

func TestClassify(t *testing.T) {
	e := service.NewIntentExtractor("sales")

	tests := []struct {
		text string
		want service.OperationKind
	}{
		{"show me sales", service.OpSelect},
		{"", service.OpSelect},
		{"How many tablets were sold?", service.OpCount},
		{"total revenue", service.OpSum},
		{"AVERAGE amount", service.OpAverage},
		{"average total sales", service.OpAverage},
		{"total how many", service.OpSum},
		{"how many orders on average", service.OpAverage},
		{"how many in total", service.OpSum},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(tt.text))
		})
	}
}

func TestExtractFiltersRegion(t *testing.T) {
	e := service.NewIntentExtractor("sales")

	tests := []struct {
		text string
		want []string
	}{
		{"sales in North, South and East", []string{"north", "south", "east"}},
		{"sales in west or east", []string{"west", "east"}},
		{"sales in north and north", []string{"north", "north"}},
		{"laptops in  South ", []string{"south"}},
		{"how many phones in north?", []string{"north"}},
		{"sales in north,", []string{"north"}},
		{"Show total sales in North region last month", []string{"north region last month"}},
		{"phone sales", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ExtractFilters(tt.text).Region)
		})
	}
}

func TestExtractFiltersRegionOnlySeparators(t *testing.T) {
	e := service.NewIntentExtractor("sales")
	f := e.ExtractFilters("sales in , ,")
	assert.False(t, f.HasRegion())
}

func TestExtractFiltersProduct(t *testing.T) {
	e := service.NewIntentExtractor("sales")

	tests := []struct {
		text string
		want string
	}{
		{"phone sales", "phone"},
		{"How many LAPTOPS?", "laptop"},
		{"tablet and phone sales", "tablet"},
		{"sales in north", ""},
		{"smartphone sales", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := e.ExtractFilters(tt.text)
			assert.Equal(t, tt.want, f.Product)
			assert.Equal(t, tt.want != "", f.HasProduct())
		})
	}
}

func TestExtractDefaults(t *testing.T) {
	e := service.NewIntentExtractor("sales")
	intent := e.Extract("hello there")

	assert.Equal(t, "sales", intent.SourceTable)
	assert.Equal(t, service.OpSelect, intent.Operation)
	assert.True(t, intent.Filters.IsEmpty())
	assert.Empty(t, intent.Filters.Keys())
}

func TestExtractFilterKeysAreBounded(t *testing.T) {
	e := service.NewIntentExtractor("sales")
	questions := []string{
		"total laptop sales in north and south where customer is vip",
		"average price in east for tablets by date and id",
		"how many rows",
	}
	for _, q := range questions {
		for _, k := range e.Extract(q).Filters.Keys() {
			assert.Contains(t, []string{service.FilterRegion, service.FilterProduct}, k, q)
		}
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		name string
		want service.OperationKind
	}{
		{"COUNT", service.OpCount},
		{" sum ", service.OpSum},
		{"avg", service.OpAverage},
		{"select", service.OpSelect},
		{"", service.OpSelect},
	}
	for _, tt := range tests {
		got, err := service.ParseOperation(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, name := range []string{"median", "average", "total"} {
		_, err := service.ParseOperation(name)
		assert.ErrorIs(t, err, service.ErrUnknownOperation, name)
	}
}
