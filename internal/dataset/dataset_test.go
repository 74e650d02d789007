package dataset_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabula/tabula/internal/dataset"
)

func TestSeedCyclesProductAndRegion(t *testing.T) {
	rows := dataset.Seed(dataset.DefaultRowCount, 42)
	require.Len(t, rows, 100)

	for i, r := range rows {
		assert.Equal(t, i+1, r.ID)
		assert.Equal(t, dataset.Products[i%3], r.Product)
		assert.Equal(t, dataset.Regions[i%4], r.Region)
		assert.GreaterOrEqual(t, r.Amount, 100.0)
		assert.LessOrEqual(t, r.Amount, 1099.0)
		assert.Equal(t, 2023, r.Date.Year())
		assert.Equal(t, i%12+1, int(r.Date.Month()))
		assert.Equal(t, i%28+1, r.Date.Day())
	}
}

func TestSeedDeterministic(t *testing.T) {
	assert.Equal(t, dataset.Seed(20, 7), dataset.Seed(20, 7))
	assert.NotEqual(t, dataset.Seed(20, 7), dataset.Seed(20, 8))
}

func TestCatalogUnknownTable(t *testing.T) {
	c := dataset.NewCatalog()
	_, err := c.GetAllRows("orders")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrUnknownTable))
}

func TestCatalogLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	c := dataset.NewCatalog()
	c.Register(dataset.DefaultTable, func() ([]dataset.Row, error) {
		calls.Add(1)
		return dataset.Seed(10, 1), nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := c.GetAllRows(dataset.DefaultTable)
			assert.NoError(t, err)
			assert.Len(t, rows, 10)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCatalogLoadError(t *testing.T) {
	boom := errors.New("boom")
	c := dataset.NewCatalog()
	c.Register("broken", func() ([]dataset.Row, error) { return nil, boom })

	err := c.Warm()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	tables := c.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, "broken", tables[0].Name)
	assert.Zero(t, tables[0].RowCount)
}

func TestCatalogTables(t *testing.T) {
	c := dataset.NewCatalog()
	c.Register("sales", dataset.SeedLoader(100, 1))
	c.Register("archive", dataset.SeedLoader(3, 1))
	require.NoError(t, c.Warm())

	tables := c.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "archive", tables[0].Name)
	assert.Equal(t, 3, tables[0].RowCount)
	assert.Equal(t, "sales", tables[1].Name)
	assert.Equal(t, 100, tables[1].RowCount)

	info, err := c.Table("sales")
	require.NoError(t, err)
	assert.Equal(t, dataset.RowSchema, info.Schema)
}
