package rlsync

import (
	"strings"
)

// SplitStatements scans raw dump text and splits it into SQL statements.
// It is not a SQL parser: it only tracks enough lexical state to know
// whether a semicolon is a real statement terminator. The scanner tracks:
//
//   - line comments ("-- ..." until end of line)
//   - block comments ("/* ... */", which nest in Postgres)
//   - single-quoted literals, including the '' escape and backslash
//     escapes inside E'...' strings
//   - double-quoted identifiers
//   - dollar-quoted bodies ($$...$$ and $tag$...$tag$)
//
// A semicolon outside all of the above terminates a statement. Chunks that
// contain only whitespace and comments are dropped. If the input ends with
// statement text that was never terminated, that text is returned as a
// final [Statement] with Unterminated set, so that callers can surface a
// diagnostic instead of silently losing it.
func SplitStatements(text string) []Statement {
	var out []Statement

	line := 1
	startLine := 1
	var buf strings.Builder
	hasContent := false

	flush := func(unterminated bool) {
		chunk := strings.TrimSpace(buf.String())
		buf.Reset()
		if hasContent && chunk != "" {
			stmt := newStatement(chunk, startLine)
			stmt.Unterminated = unterminated
			out = append(out, stmt)
		}
		hasContent = false
	}

	// mark records that the current chunk has real statement content,
	// remembering the line it started on.
	mark := func() {
		if !hasContent {
			hasContent = true
			startLine = line
		}
	}

	const (
		stNormal = iota
		stLineComment
		stBlockComment
		stSingleQuote
		stDoubleQuote
		stDollarQuote
	)
	state := stNormal
	blockDepth := 0
	eString := false // inside E'...' where backslash escapes apply
	dollarTag := ""

	runes := []rune(text)
	n := len(runes)
	for i := 0; i < n; i++ {
		c := runes[i]
		var peek rune
		if i+1 < n {
			peek = runes[i+1]
		}
		if c == '\n' {
			line++
		}

		switch state {
		case stNormal:
			switch {
			case c == ';':
				flush(false)
				continue
			case c == '-' && peek == '-':
				state = stLineComment
			case c == '/' && peek == '*':
				state = stBlockComment
				blockDepth = 1
				buf.WriteRune(c)
				buf.WriteRune(peek)
				i++
				continue
			case c == '\'':
				state = stSingleQuote
				// A lone e/E prefix marks an escape string; a longer
				// word ending in e (date'...', timezone'...') does not.
				eString = i > 0 && (runes[i-1] == 'e' || runes[i-1] == 'E') &&
					(i < 2 || !isIdentRune(runes[i-2], false))
				mark()
			case c == '"':
				state = stDoubleQuote
				mark()
			case c == '$':
				if tag, ok := dollarTagAt(runes, i); ok {
					state = stDollarQuote
					dollarTag = tag
					mark()
					buf.WriteString(tag)
					i += len(tag) - 1
					continue
				}
				mark()
			default:
				if !isSpace(c) {
					mark()
				}
			}
			buf.WriteRune(c)

		case stLineComment:
			buf.WriteRune(c)
			if c == '\n' {
				state = stNormal
			}

		case stBlockComment:
			buf.WriteRune(c)
			if c == '*' && peek == '/' {
				buf.WriteRune(peek)
				i++
				blockDepth--
				if blockDepth == 0 {
					state = stNormal
				}
			} else if c == '/' && peek == '*' {
				buf.WriteRune(peek)
				i++
				blockDepth++
			}

		case stSingleQuote:
			buf.WriteRune(c)
			switch {
			case eString && c == '\\':
				if i+1 < n {
					if peek == '\n' {
						line++
					}
					buf.WriteRune(peek)
					i++
				}
			case c == '\'':
				if peek == '\'' {
					// '' is an escaped quote, stay in the literal
					buf.WriteRune(peek)
					i++
				} else {
					state = stNormal
					eString = false
				}
			}

		case stDoubleQuote:
			buf.WriteRune(c)
			if c == '"' {
				if peek == '"' {
					buf.WriteRune(peek)
					i++
				} else {
					state = stNormal
				}
			}

		case stDollarQuote:
			if c == '$' {
				if tag, ok := dollarTagAt(runes, i); ok && tag == dollarTag {
					buf.WriteString(tag)
					i += len(tag) - 1
					state = stNormal
					dollarTag = ""
					continue
				}
			}
			buf.WriteRune(c)
		}
	}
	flush(true)
	return out
}

// dollarTagAt reports whether runes[i:] begins a dollar-quote delimiter,
// returning the full delimiter including both dollar signs ("$$", "$body$").
// The tag between the dollar signs must be empty or a valid identifier.
func dollarTagAt(runes []rune, i int) (string, bool) {
	if runes[i] != '$' {
		return "", false
	}
	for j := i + 1; j < len(runes); j++ {
		c := runes[j]
		if c == '$' {
			return string(runes[i : j+1]), true
		}
		if !isIdentRune(c, j == i+1) {
			return "", false
		}
	}
	return "", false
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentRune(c rune, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	if !first && c >= '0' && c <= '9' {
		return true
	}
	return false
}
