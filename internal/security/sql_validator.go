package security

import (
	"regexp"
	"strings"
)

// statementPattern is the only statement shape accepted:
// VERB <projection> FROM <identifier> [WHERE <predicate>]
var statementPattern = regexp.MustCompile(`(?i)^(SELECT|UPDATE|DELETE|INSERT)\s+.+?\s+FROM\s+\w+(?:\s+WHERE\s+.+)?$`)

// SQLValidator checks query strings against a minimal statement grammar.
// It is lexical only: column names, operators and table existence are not checked.
type SQLValidator struct{}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Valid reports whether the trimmed sql matches the statement grammar.
func (v *SQLValidator) Valid(sql string) bool {
	return statementPattern.MatchString(strings.TrimSpace(sql))
}
