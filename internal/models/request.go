package models

import "strings"

// QueryRequest is the body of POST /api/v1/validate, /explain and /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// Normalize trims the query text.
func (r *QueryRequest) Normalize() {
	r.Query = strings.TrimSpace(r.Query)
}
