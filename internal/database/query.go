package database

import (
	"strings"
	"sync"
)

// QueryBuilder rewrites queries written with ? placeholders for the active
// dialect. Rewritten queries are cached by their source text.
type QueryBuilder struct {
	dialect Dialect
	cache   sync.Map // string -> string
}

// NewQueryBuilder returns a QueryBuilder for dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build returns query with every ? outside a single-quoted literal replaced
// by the dialect's numbered placeholder.
//
//	in:       SELECT id FROM battles WHERE winner = ? LIMIT ?
//	postgres: SELECT id FROM battles WHERE winner = $1 LIMIT $2
func (qb *QueryBuilder) Build(query string) string {
	if qb.dialect.Placeholder(1) == "?" {
		return query
	}
	if cached, ok := qb.cache.Load(query); ok {
		return cached.(string)
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inLiteral := false
	for _, r := range query {
		if r == '\'' {
			inLiteral = !inLiteral
		}
		if r == '?' && !inLiteral {
			n++
			b.WriteString(qb.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	qb.cache.Store(query, out)
	return out
}
