package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs query events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// QueryEvent describes one handled request against the query endpoints.
type QueryEvent struct {
	Endpoint     string
	Query        string
	APIKey       string
	RequestID    string
	Operation    string
	MatchedCount int
	DurationMs   int64
	Success      bool
	Error        string
}

// LogQuery records a query event
func (a *AuditLogger) LogQuery(e QueryEvent) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "query_audit").
		Str("endpoint", e.Endpoint).
		Str("query_hash", hashStr(e.Query)[:16]).
		Str("api_key_hash", hashStr(e.APIKey)[:16]).
		Str("request_id", e.RequestID).
		Int64("duration_ms", e.DurationMs).
		Bool("success", e.Success)

	if e.Operation != "" {
		evt = evt.Str("operation", e.Operation).Int("matched_count", e.MatchedCount)
	}
	if e.Error != "" {
		evt = evt.Str("error", e.Error)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
