package rlsync

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rlsync/rlsync/internal/pgtools"
)

// Executor is satisfied by *sql.DB, *sql.Conn, and *sql.Tx. The applier and
// verifier accept an Executor so that they can run inside the syncer's
// session-scoped lock (which requires a *sql.Conn) as well as directly
// against a *sql.DB from an external caller.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ApplyError records a statement that failed with a recoverable error. The
// statement text is kept verbatim so the operator can retry it by hand.
type ApplyError struct {
	Statement string
	Err       error
}

func (e ApplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, truncate(e.Statement, 120))
}

// ApplyResult summarizes one apply phase.
type ApplyResult struct {
	// Applied counts statements that executed cleanly.
	Applied int
	// Skipped counts statements rejected with an "already exists" error,
	// which re-runs against an existing target produce routinely.
	Skipped int
	// Errors holds the recoverable per-statement failures, in the order
	// they occurred.
	Errors []ApplyError
}

// Applier executes DDL against a target database. It is best-effort, not
// all-or-nothing: a statement that fails with a recoverable error is
// recorded and the run continues, and nothing is rolled back on partial
// failure. Only fatal errors (broken connection, syntax error) abort.
type Applier struct {
	Logger Logger
}

// ApplySchema executes the filtered schema statements against the target,
// in dump order. Tables and functions must be in place before any policy
// is attempted, so this always runs before [Applier.ApplyPolicies].
func (a *Applier) ApplySchema(ctx context.Context, db Executor, stmts []Statement) (ApplyResult, error) {
	logInfo(ctx, a.Logger, "applying filtered schema", LogField{Key: "statements", Value: len(stmts)})
	texts := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		texts = append(texts, stmt.Text)
	}
	return a.apply(ctx, db, texts, "schema")
}

// ApplyPolicies executes the extracted policy statements against the
// target. One bad policy must not block the rest: every failure short of a
// fatal one is recorded and the loop continues.
func (a *Applier) ApplyPolicies(ctx context.Context, db Executor, policies []Policy) (ApplyResult, error) {
	logInfo(ctx, a.Logger, "applying policies", LogField{Key: "policies", Value: len(policies)})
	texts := make([]string, 0, len(policies))
	for _, p := range policies {
		texts = append(texts, p.Definition)
	}
	return a.apply(ctx, db, texts, "policies")
}

func (a *Applier) apply(ctx context.Context, db Executor, texts []string, phase string) (ApplyResult, error) {
	var result ApplyResult
	for _, text := range texts {
		_, err := db.ExecContext(ctx, text)
		if err == nil {
			result.Applied++
			continue
		}
		if pgtools.IsDuplicate(err) {
			result.Skipped++
			logDebug(ctx, a.Logger, "already exists, skipping",
				LogField{Key: "phase", Value: phase},
				LogField{Key: "statement", Value: truncate(text, 120)})
			continue
		}
		if pgtools.IsFatal(err) {
			logError(ctx, a.Logger, err, "fatal error, aborting",
				LogField{Key: "phase", Value: phase},
				LogField{Key: "statement", Value: text})
			return result, fmt.Errorf("apply %s: %w", phase, err)
		}
		result.Errors = append(result.Errors, ApplyError{Statement: text, Err: err})
		fields := []LogField{
			{Key: "phase", Value: phase},
			{Key: "statement", Value: truncate(text, 120)},
		}
		for key, val := range pgtools.ErrorData(err) {
			fields = append(fields, LogField{Key: key, Value: val})
		}
		logWarn(ctx, a.Logger, fmt.Sprintf("statement failed: %s", err), fields...)
	}
	logInfo(ctx, a.Logger, "phase complete",
		LogField{Key: "phase", Value: phase},
		LogField{Key: "applied", Value: result.Applied},
		LogField{Key: "skipped", Value: result.Skipped},
		LogField{Key: "errors", Value: len(result.Errors)})
	return result, nil
}
