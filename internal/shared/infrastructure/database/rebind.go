package database

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders into the $1, $2, ... form PostgreSQL expects.
// Question marks inside single-quoted literals are left alone. Repositories
// write their SQL once with ? and the postgres connection rebinds it.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inLiteral = !inLiteral
			b.WriteByte(ch)
		case ch == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
