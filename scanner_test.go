package rlsync_test

import (
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/rlsync/rlsync"
)

func TestSplitStatementsBasic(t *testing.T) {
	t.Parallel()
	stmts := rlsync.SplitStatements("CREATE TABLE a (id int);\n\nCREATE TABLE b (id int);\n")
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, "CREATE TABLE a (id int)", stmts[0].Text)
	check.Equal(t, 1, stmts[0].Line)
	check.Equal(t, "CREATE TABLE b (id int)", stmts[1].Text)
	check.Equal(t, 3, stmts[1].Line)
	for _, stmt := range stmts {
		check.Equal(t, false, stmt.Unterminated)
	}
}

func TestSplitStatementsSemicolonInsideLiteral(t *testing.T) {
	t.Parallel()
	// The policy body spans five lines and its string literal contains a
	// semicolon. The scanner must not terminate the statement early.
	text := `CREATE POLICY documents_owner ON app.documents
    USING (
        owner_id = 7
        AND title <> 'reserved; do not touch'
    );
`
	stmts := rlsync.SplitStatements(text)
	assert.Equal(t, 1, len(stmts))
	check.Equal(t, rlsync.ObjectPolicy, stmts[0].Type)
	check.Equal(t, "app", stmts[0].Schema)
	check.Equal(t, false, stmts[0].Unterminated)
	check.True(t, strings.Contains(stmts[0].Text, "'reserved; do not touch'"))
}

func TestSplitStatementsEscapedQuotes(t *testing.T) {
	t.Parallel()
	stmts := rlsync.SplitStatements(`SELECT 'it''s; fine'; SELECT E'a\'b;c';`)
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, `SELECT 'it''s; fine'`, stmts[0].Text)
	check.Equal(t, `SELECT E'a\'b;c'`, stmts[1].Text)
}

func TestSplitStatementsTypedLiteralIsNotEscapeString(t *testing.T) {
	t.Parallel()
	// In a plain literal after a word ending in e, a backslash is an
	// ordinary character and must not consume the closing quote.
	stmts := rlsync.SplitStatements(`SELECT date'1999-01-01\'; SELECT 'ok';`)
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, `SELECT date'1999-01-01\'`, stmts[0].Text)
	check.Equal(t, `SELECT 'ok'`, stmts[1].Text)

	stmts = rlsync.SplitStatements(`SELECT e'a\'b'; SELECT 1;`)
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, `SELECT e'a\'b'`, stmts[0].Text)
}

func TestSplitStatementsDollarQuotes(t *testing.T) {
	t.Parallel()
	text := `CREATE FUNCTION f() RETURNS void LANGUAGE sql AS $$
  SELECT 1;
$$;
CREATE FUNCTION g() RETURNS void LANGUAGE plpgsql AS $fn$
BEGIN
  PERFORM 1; -- $$ not a terminator here either
END;
$fn$;
`
	stmts := rlsync.SplitStatements(text)
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, rlsync.ObjectFunction, stmts[0].Type)
	check.True(t, strings.Contains(stmts[0].Text, "SELECT 1;"))
	check.Equal(t, rlsync.ObjectFunction, stmts[1].Type)
	check.True(t, strings.Contains(stmts[1].Text, "PERFORM 1;"))
	check.Equal(t, 4, stmts[1].Line)
}

func TestSplitStatementsComments(t *testing.T) {
	t.Parallel()
	text := `-- leading comment; with a semicolon
/* block; comment /* nested; */ still inside; */
CREATE TABLE a (id int); -- trailing comment
`
	stmts := rlsync.SplitStatements(text)
	assert.Equal(t, 1, len(stmts))
	check.Equal(t, rlsync.ObjectTable, stmts[0].Type)
	check.Equal(t, 3, stmts[0].Line)
}

func TestSplitStatementsQuotedIdentifiers(t *testing.T) {
	t.Parallel()
	stmts := rlsync.SplitStatements(`CREATE TABLE "weird;name" (id int);`)
	assert.Equal(t, 1, len(stmts))
	check.True(t, strings.Contains(stmts[0].Text, `"weird;name"`))
}

func TestSplitStatementsUnterminated(t *testing.T) {
	t.Parallel()
	stmts := rlsync.SplitStatements("CREATE TABLE a (id int);\nCREATE POLICY p ON a USING (true")
	assert.Equal(t, 2, len(stmts))
	check.Equal(t, false, stmts[0].Unterminated)
	check.Equal(t, true, stmts[1].Unterminated)
	check.Equal(t, rlsync.ObjectPolicy, stmts[1].Type)
}

func TestSplitStatementsCommentOnlyInputIsDropped(t *testing.T) {
	t.Parallel()
	stmts := rlsync.SplitStatements("--\n-- PostgreSQL database dump\n--\n\n/* nothing here */\n")
	check.Equal(t, 0, len(stmts))
}
