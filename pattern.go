package mysqlreconnect

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileLikePattern converts a SQL LIKE style glob into a compiled regular
// expression. '%' matches any run of characters (including none), '_' matches
// exactly one character, and '\' escapes the following character. The result
// is anchored on both ends, so a pattern only ever matches the full string.
func CompileLikePattern(glob string) (*regexp.Regexp, error) {
	runes := []rune(glob)
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
			if i >= len(runes) {
				return nil, fmt.Errorf("like pattern %q: dangling escape", glob)
			}
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
