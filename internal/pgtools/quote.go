package pgtools

import (
	"fmt"
	"strings"
)

// Literal and Identifier are derived almost exactly from lib/pq, which is
// released under the MIT License.
// https://github.com/lib/pq
//
// Copyright (c) 2011-2013, 'pq' Contributors Portions Copyright (C) 2011 Blake
// Mizerany
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Literal quotes a 'literal' (e.g. a parameter, often used to pass a
// literal to DDL and other statements that do not accept parameters) to be
// used as part of an SQL statement.
//
// Any single quotes in the value will be escaped. Any backslashes will be
// doubled and the C-style escape identifier that PostgreSQL provides ('E')
// will be prepended to the string.
func Literal(literal string) string {
	literal = strings.ReplaceAll(literal, `'`, `''`)
	if strings.Contains(literal, `\`) {
		literal = strings.ReplaceAll(literal, `\`, `\\`)
		literal = ` E'` + literal + `'`
	} else {
		literal = `'` + literal + `'`
	}
	return literal
}

// Identifier quotes an identifier (the name of a table, column, schema,
// policy, etc.) for use in a DDL statement defining or referencing that
// object. It returns the identifier unchanged when possible, introducing
// quotes only when the identifier:
//
//   - has an upper-case character
//   - has a character that is not a letter, digit, or underscore
//   - starts with a digit
//   - is a reserved keyword in PostgreSQL
//
// For convenience, Identifier accepts the parts of a fully-qualified
// "dotted" identifier, or a single un-split dotted identifier.
func Identifier(parts ...string) string {
	if len(parts) == 1 {
		parts = strings.Split(parts[0], ".")
	}
	out := make([]string, 0, len(parts))
	for _, identifier := range parts {
		if requiresQuoting(identifier) {
			identifier = fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
		}
		out = append(out, identifier)
	}
	return strings.Join(out, ".")
}

func requiresQuoting(identifier string) bool {
	if identifier == "" {
		return true
	}
	for i, c := range identifier {
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	_, reserved := reservedKeywords[identifier]
	return reserved
}

// reservedKeywords are the PostgreSQL keywords that cannot appear as a
// bare identifier in the positions this package quotes for. Non-reserved
// keywords are deliberately omitted.
var reservedKeywords = map[string]struct{}{
	"all": {}, "analyse": {}, "analyze": {}, "and": {}, "any": {},
	"array": {}, "as": {}, "asc": {}, "asymmetric": {}, "both": {},
	"case": {}, "cast": {}, "check": {}, "collate": {}, "column": {},
	"constraint": {}, "create": {}, "current_catalog": {},
	"current_date": {}, "current_role": {}, "current_time": {},
	"current_timestamp": {}, "current_user": {}, "default": {},
	"deferrable": {}, "desc": {}, "distinct": {}, "do": {}, "else": {},
	"end": {}, "except": {}, "false": {}, "fetch": {}, "for": {},
	"foreign": {}, "from": {}, "grant": {}, "group": {}, "having": {},
	"in": {}, "initially": {}, "intersect": {}, "into": {}, "lateral": {},
	"leading": {}, "limit": {}, "localtime": {}, "localtimestamp": {},
	"not": {}, "null": {}, "offset": {}, "on": {}, "only": {}, "or": {},
	"order": {}, "placing": {}, "primary": {}, "references": {},
	"returning": {}, "select": {}, "session_user": {}, "some": {},
	"symmetric": {}, "table": {}, "then": {}, "to": {}, "trailing": {},
	"true": {}, "union": {}, "unique": {}, "user": {}, "using": {},
	"variadic": {}, "when": {}, "where": {}, "window": {}, "with": {},
}
