package rlsync

import (
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// PolicyKey identifies a row-level-security policy. Policy names are only
// unique per table, so the full (schema, table, name) triple is the
// uniqueness key, matching pg_policies semantics.
type PolicyKey struct {
	Schema string
	Table  string
	Name   string
}

// String renders the key as "schema.table.name" for reports and logs.
func (k PolicyKey) String() string {
	return k.Schema + "." + k.Table + "." + k.Name
}

// SortKey orders keys by (schema, table, name). The NUL separator keeps
// names containing dots from colliding with qualified names.
func (k PolicyKey) SortKey() string {
	return k.Schema + "\x00" + k.Table + "\x00" + k.Name
}

// Policy is a row-level-security policy extracted from a schema dump. The
// definition is the raw CREATE POLICY statement text; it is never mutated
// after extraction.
type Policy struct {
	PolicyKey
	// Definition is the CREATE POLICY statement without the trailing
	// semicolon.
	Definition string
}

// String returns the policy DDL with its terminator restored.
func (p Policy) String() string {
	return p.Definition + ";"
}

// keyed is satisfied by [PolicyKey] and anything that embeds one.
type keyed[K constraints.Ordered] interface {
	SortKey() K
}

func sortByKey[K constraints.Ordered, T keyed[K]](items []T) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].SortKey() < items[j].SortKey()
	})
}

// SortPolicies orders policies by (schema, table, name).
func SortPolicies(policies []Policy) {
	sortByKey(policies)
}

// SortKeys orders policy keys by (schema, table, name).
func SortKeys(keys []PolicyKey) {
	sortByKey(keys)
}

// parsePolicyHead reads the policy name and qualified table name out of a
// CREATE POLICY statement. Returns false for statements that do not have
// the expected "CREATE POLICY name ON table" head.
func parsePolicyHead(text string) (PolicyKey, bool) {
	toks := tokenize(text, headLimit)
	if len(toks) < 4 || !toks[0].keyword("create") || !toks[1].keyword("policy") {
		return PolicyKey{}, false
	}
	name := toks[2]
	if name.text == "" {
		return PolicyKey{}, false
	}
	if !name.quoted && !isIdentRune(rune(name.text[0]), true) {
		return PolicyKey{}, false
	}
	rest := afterOn(toks[3:])
	table, schema := qualifiedName(rest)
	if table == "" {
		return PolicyKey{}, false
	}
	return PolicyKey{Schema: schema, Table: table, Name: name.text}, true
}

// RenderPolicies renders extracted policies as a standalone DDL artifact,
// one statement per paragraph, suitable for independent application and
// auditing.
func RenderPolicies(policies []Policy) string {
	var b strings.Builder
	for _, p := range policies {
		b.WriteString(p.String())
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderStatements renders filtered statements back into executable DDL
// text, preserving their original order.
func RenderStatements(stmts []Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.String())
		b.WriteString("\n\n")
	}
	return b.String()
}
