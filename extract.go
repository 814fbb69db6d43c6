package rlsync

import (
	"context"
	"fmt"
	"strings"
)

// Extraction is the result of scanning a dump for row-level-security
// policies.
type Extraction struct {
	// Policies are the policies to migrate, deduplicated, in dump order.
	// Policies in excluded namespaces are not included here.
	Policies []Policy
	// Excluded are policies that were found but belong to an excluded
	// namespace. They are counted in reports but never applied.
	Excluded []Policy
	// Malformed counts policy statements that could not be extracted
	// cleanly (unterminated bodies, unparseable heads). Each one is
	// logged as a warning when it is skipped.
	Malformed int
}

// SourceTotal is the number of policy statements found in the dump,
// including excluded namespaces.
func (e Extraction) SourceTotal() int {
	return len(e.Policies) + len(e.Excluded)
}

// ExtractPolicies scans the raw, unfiltered dump for CREATE POLICY
// statements. It always runs against the pre-filter dump, so namespace
// filtering can never cause a policy to be lost.
//
// Two independent detection strategies are combined:
//
//   - the statement scanner, which handles policies whose bodies span
//     multiple lines (including semicolons inside quoted literals), and
//   - a per-line match for policies that begin and end on a single line.
//
// A policy found by both collapses to one record; (schema, table, name)
// is the uniqueness key. A malformed statement is logged and skipped
// rather than aborting the extraction.
func ExtractPolicies(ctx context.Context, dump SchemaDump, exclude []string, logger Logger) Extraction {
	var ex Extraction
	excluded := make(map[string]bool, len(exclude))
	for _, schema := range exclude {
		excluded[schema] = true
	}
	seen := map[PolicyKey]bool{}
	seenMalformed := map[string]bool{}

	record := func(stmt Statement) {
		if stmt.Unterminated {
			ex.Malformed++
			logWarn(ctx, logger, "skipping unterminated policy statement",
				LogField{Key: "line", Value: stmt.Line})
			return
		}
		key, ok := parsePolicyHead(stmt.Text)
		if !ok {
			if seenMalformed[stmt.Text] {
				return
			}
			seenMalformed[stmt.Text] = true
			ex.Malformed++
			logWarn(ctx, logger, "skipping unparseable policy statement",
				LogField{Key: "line", Value: stmt.Line},
				LogField{Key: "statement", Value: truncate(stmt.Text, 120)})
			return
		}
		if seen[key] {
			return
		}
		seen[key] = true
		policy := Policy{PolicyKey: key, Definition: stmt.Text}
		if excluded[key.Schema] {
			ex.Excluded = append(ex.Excluded, policy)
		} else {
			ex.Policies = append(ex.Policies, policy)
		}
	}

	// Multi-line detection via the statement scanner.
	for _, stmt := range dump.Statements {
		if stmt.Type == ObjectPolicy {
			record(stmt)
		}
	}
	// Single-line detection over the raw text. Normally a strict subset
	// of what the scanner found; anything new is unioned in.
	for _, stmt := range singleLinePolicies(dump.Raw) {
		record(stmt)
	}
	return ex
}

// singleLinePolicies finds CREATE POLICY statements that begin and end on
// one line of the raw dump.
func singleLinePolicies(raw string) []Statement {
	var out []Statement
	for i, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !hasPolicyPrefix(trimmed) {
			continue
		}
		stmts := SplitStatements(trimmed)
		if len(stmts) != 1 || stmts[0].Unterminated {
			continue
		}
		stmt := stmts[0]
		stmt.Line = i + 1
		out = append(out, stmt)
	}
	return out
}

func hasPolicyPrefix(line string) bool {
	toks := tokenize(line, 2)
	return len(toks) == 2 && toks[0].keyword("create") && toks[1].keyword("policy")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
