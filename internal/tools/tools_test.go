package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/tools"
)

func newCatalog(t *testing.T) *dataset.Catalog {
	t.Helper()
	c := dataset.NewCatalog()
	c.Register("sales", dataset.SeedLoader(10, 1))
	return c
}

func TestTableSchemaTool(t *testing.T) {
	tool := tools.TableSchemaTool(newCatalog(t))

	out, err := tool.Execute(context.Background(), map[string]interface{}{"table": "sales"})
	require.NoError(t, err)
	assert.Contains(t, out, "Table: sales")
	assert.Contains(t, out, "Rows: 10")
	assert.Contains(t, out, "  - region (STRING)")

	_, err = tool.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)

	_, err = tool.Execute(context.Background(), map[string]interface{}{"table": "orders"})
	assert.ErrorIs(t, err, dataset.ErrUnknownTable)
}

func TestListTablesTool(t *testing.T) {
	out, err := tools.ListTablesTool(newCatalog(t)).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tables:\n  - sales (rows: 10)\n", out)
}

func TestSampleRowsTool(t *testing.T) {
	out, err := tools.SampleRowsTool(newCatalog(t)).Execute(context.Background(), map[string]interface{}{"table": "sales"})
	require.NoError(t, err)

	var decoded struct {
		Table  string        `json:"table"`
		Sample []dataset.Row `json:"sample"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "sales", decoded.Table)
	require.Len(t, decoded.Sample, 3)
	assert.Equal(t, "Laptop", decoded.Sample[0].Product)
}

func TestSubmitIntentTool(t *testing.T) {
	tool := tools.SubmitIntentTool()
	assert.Equal(t, tools.SubmitIntentName, tool.Name)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"operation": "COUNT"})
	assert.NoError(t, err)
	_, err = tool.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}

func TestDatasetTools(t *testing.T) {
	var names []string
	for _, tool := range tools.DatasetTools(newCatalog(t)) {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"list_tables", "get_table_schema", "get_sample_rows"}, names)
}
