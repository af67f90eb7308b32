package mysqlreconnect

import "regexp"

// Statements whose leading keyword marks them as reads. Everything else,
// including statements we cannot see the text of, is treated as a write so
// that unknown side effects are never replayed under ModeReadOnly.
var readSQLPattern = regexp.MustCompile(`(?i)^\s*(?:SELECT|SHOW|SET)\b`)

// isReadSQL reports whether sql is a read-only statement.
func isReadSQL(sql string) bool {
	return sql != "" && readSQLPattern.MatchString(sql)
}
