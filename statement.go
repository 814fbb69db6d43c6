package rlsync

import (
	"strings"
)

// DefaultSchema is the namespace assigned to statements whose object names
// are not schema-qualified in the dump.
const DefaultSchema = "public"

// ObjectType tags a statement with the kind of database object it targets.
type ObjectType string

const (
	ObjectTable    ObjectType = "table"
	ObjectFunction ObjectType = "function"
	ObjectPolicy   ObjectType = "policy"
	ObjectGrant    ObjectType = "grant"
	ObjectOther    ObjectType = "other"
)

// Statement is a single SQL statement from a schema dump, tagged with the
// type and namespace of the object it targets. Statements are produced by
// [SplitStatements] and are never mutated afterwards.
type Statement struct {
	// Text is the statement text without the trailing semicolon.
	Text string
	// Type is the kind of object the statement targets.
	Type ObjectType
	// Schema is the namespace of the targeted object. Empty when the
	// statement does not reference a namespaced object at all (SET,
	// SELECT, and similar).
	Schema string
	// Line is the 1-based line in the dump where the statement started.
	Line int
	// Unterminated is true for trailing dump text that was never closed
	// with a semicolon.
	Unterminated bool
}

// String returns the statement with its terminator restored.
func (s Statement) String() string {
	return s.Text + ";"
}

func newStatement(text string, line int) Statement {
	typ, schema := classify(text)
	return Statement{Text: text, Type: typ, Schema: schema, Line: line}
}

// token is a single word or punctuation mark from a statement head. Quoted
// identifiers keep their exact spelling with the quotes stripped.
type token struct {
	text   string
	quoted bool
}

// keyword reports whether the token is the given unquoted keyword,
// case-insensitively.
func (t token) keyword(word string) bool {
	return !t.quoted && strings.EqualFold(t.text, word)
}

// tokenize splits the head of a statement into identifier and punctuation
// tokens, skipping comments. It reads at most limit tokens; statement heads
// are short and classification never needs the body.
func tokenize(text string, limit int) []token {
	var toks []token
	runes := []rune(text)
	n := len(runes)
	for i := 0; i < n && len(toks) < limit; i++ {
		c := runes[i]
		switch {
		case isSpace(c):
			continue
		case c == '-' && i+1 < n && runes[i+1] == '-':
			for i < n && runes[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && runes[i+1] == '*':
			depth := 1
			i += 2
			for i < n && depth > 0 {
				if runes[i] == '*' && i+1 < n && runes[i+1] == '/' {
					depth--
					i++
				} else if runes[i] == '/' && i+1 < n && runes[i+1] == '*' {
					depth++
					i++
				}
				i++
			}
			i--
		case c == '"':
			var ident strings.Builder
			i++
			for i < n {
				if runes[i] == '"' {
					if i+1 < n && runes[i+1] == '"' {
						ident.WriteRune('"')
						i += 2
						continue
					}
					break
				}
				ident.WriteRune(runes[i])
				i++
			}
			toks = append(toks, token{text: ident.String(), quoted: true})
		case isIdentRune(c, true):
			j := i
			for j < n && isIdentRune(runes[j], false) {
				j++
			}
			toks = append(toks, token{text: string(runes[i:j])})
			i = j - 1
		default:
			toks = append(toks, token{text: string(c)})
		}
	}
	return toks
}

// headLimit is how many leading tokens classify examines. Statement heads
// in pg_dump output identify their object well within this window.
const headLimit = 64

// classify determines the object type and target namespace of a statement
// by reading its leading tokens. Unrecognized statements are ObjectOther
// with an empty schema, which the filter always retains.
func classify(text string) (ObjectType, string) {
	toks := tokenize(text, headLimit)
	if len(toks) == 0 {
		return ObjectOther, ""
	}
	head := toks[0]
	switch {
	case head.keyword("grant") || head.keyword("revoke"):
		return ObjectGrant, grantSchema(toks[1:])
	case head.keyword("comment"):
		return ObjectOther, commentSchema(toks[1:])
	case head.keyword("create") || head.keyword("alter") || head.keyword("drop"):
		return ddlTarget(toks[1:])
	}
	return ObjectOther, ""
}

// ddlModifiers are words that may appear between CREATE/ALTER/DROP and the
// object kind, or between the object kind and the object name.
var ddlModifiers = map[string]bool{
	"or": true, "replace": true, "unique": true, "global": true,
	"local": true, "temporary": true, "temp": true, "unlogged": true,
	"materialized": true, "recursive": true, "concurrently": true,
	"if": true, "not": true, "exists": true, "only": true,
	"foreign": true, "constraint": true,
}

func ddlTarget(toks []token) (ObjectType, string) {
	i := 0
	for i < len(toks) && !toks[i].quoted && ddlModifiers[strings.ToLower(toks[i].text)] {
		i++
	}
	if i >= len(toks) {
		return ObjectOther, ""
	}
	kind := strings.ToLower(toks[i].text)
	rest := toks[i+1:]
	switch kind {
	case "table", "view":
		_, schema := qualifiedName(skipModifiers(rest))
		return ObjectTable, schema
	case "function", "procedure", "aggregate", "routine":
		_, schema := qualifiedName(skipModifiers(rest))
		return ObjectFunction, schema
	case "schema":
		name, _ := qualifiedName(skipModifiers(rest))
		return ObjectOther, name
	case "policy":
		_, schema := qualifiedName(afterOn(rest))
		return ObjectPolicy, schema
	case "index", "trigger", "rule":
		_, schema := qualifiedName(afterOn(rest))
		return ObjectOther, schema
	case "sequence", "type", "domain":
		_, schema := qualifiedName(skipModifiers(rest))
		return ObjectOther, schema
	}
	return ObjectOther, ""
}

// grantSchema finds the namespace a GRANT or REVOKE statement targets.
// Handles the three shapes pg_dump produces:
//
//	GRANT ... ON TABLE schema.name TO role
//	GRANT USAGE ON SCHEMA name TO role
//	GRANT ... ON ALL TABLES IN SCHEMA name TO role
func grantSchema(toks []token) string {
	rest := afterOn(toks)
	i := 0
	for i < len(rest) && !rest[i].quoted {
		switch strings.ToLower(rest[i].text) {
		case "table", "sequence", "function", "procedure", "routine",
			"all", "tables", "sequences", "functions", "procedures",
			"routines", "in", "foreign":
			i++
			continue
		case "schema":
			name, _ := qualifiedName(rest[i+1:])
			return name
		}
		break
	}
	_, schema := qualifiedName(rest[i:])
	return schema
}

// commentSchema finds the namespace of a COMMENT ON statement. Comments on
// policies name the table after a second ON keyword.
func commentSchema(toks []token) string {
	rest := afterOn(toks)
	if len(rest) == 0 {
		return ""
	}
	kind := strings.ToLower(rest[0].text)
	switch kind {
	case "schema":
		name, _ := qualifiedName(rest[1:])
		return name
	case "policy", "trigger", "rule":
		// COMMENT ON POLICY name ON schema.table IS '...'
		_, schema := qualifiedName(afterOn(rest[1:]))
		return schema
	case "table", "view", "function", "column", "index", "sequence",
		"type", "domain", "constraint", "extension", "aggregate":
		_, schema := qualifiedName(rest[1:])
		return schema
	}
	return ""
}

// afterOn returns the tokens following the first standalone ON keyword.
func afterOn(toks []token) []token {
	for i, t := range toks {
		if t.keyword("on") {
			return toks[i+1:]
		}
	}
	return nil
}

func skipModifiers(toks []token) []token {
	i := 0
	for i < len(toks) && !toks[i].quoted && ddlModifiers[strings.ToLower(toks[i].text)] {
		i++
	}
	return toks[i:]
}

// qualifiedName reads an optionally schema-qualified name from the start of
// toks. It returns the object name and its namespace; unqualified names
// belong to [DefaultSchema]. Returns empty strings when no identifier is
// present.
func qualifiedName(toks []token) (name, schema string) {
	if len(toks) == 0 {
		return "", ""
	}
	first := toks[0]
	if first.text == "" {
		return "", ""
	}
	if !first.quoted && !isIdentRune(rune(first.text[0]), true) {
		return "", ""
	}
	if len(toks) >= 3 && toks[1].text == "." && !toks[1].quoted {
		return toks[2].text, first.text
	}
	return first.text, DefaultSchema
}
