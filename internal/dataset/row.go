// Package dataset holds the read-only tables the query engine runs against.
package dataset

import (
	"errors"
	"time"
)

// DefaultTable is the single table the service exposes.
const DefaultTable = "sales"

// ErrUnknownTable is returned when a table has not been registered.
var ErrUnknownTable = errors.New("unknown table")

// Products and Regions are the enumerated values a sales row can carry.
var (
	Products = []string{"Laptop", "Phone", "Tablet"}
	Regions  = []string{"North", "South", "East", "West"}
)

// Row is a single sales record. Rows are never modified after a table is loaded.
type Row struct {
	ID      int       `json:"id" yaml:"id"`
	Product string    `json:"product" yaml:"product"`
	Region  string    `json:"region" yaml:"region"`
	Amount  float64   `json:"amount" yaml:"amount"`
	Date    time.Time `json:"date" yaml:"date"`
}

// Source serves the rows of a named table in storage order.
// The returned slice is shared and must be treated as read-only.
type Source interface {
	GetAllRows(table string) ([]Row, error)
}

// Field describes one column of a table.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// RowSchema is the column layout of every table built from Row.
var RowSchema = []Field{
	{Name: "id", Type: "INTEGER"},
	{Name: "product", Type: "STRING"},
	{Name: "region", Type: "STRING"},
	{Name: "amount", Type: "NUMERIC"},
	{Name: "date", Type: "TIMESTAMP"},
}

// TableInfo summarizes a loaded table.
type TableInfo struct {
	Name     string  `json:"name" yaml:"name"`
	RowCount int     `json:"row_count" yaml:"row_count"`
	Schema   []Field `json:"schema,omitempty" yaml:"schema,omitempty"`
}
