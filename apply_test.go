package rlsync_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/rlsync/rlsync"
)

// execRecorder implements [rlsync.Executor] in memory, failing any
// statement it has a canned error for.
type execRecorder struct {
	errs     map[string]error
	executed []string
}

func (f *execRecorder) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.executed = append(f.executed, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return noResult{}, nil
}

func (f *execRecorder) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	return nil, errors.New("unexpected query")
}

type noResult struct{}

func (noResult) LastInsertId() (int64, error) { return 0, nil }
func (noResult) RowsAffected() (int64, error) { return 0, nil }

func pgErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "pg error " + code}
}

func TestApplySchemaAppliesInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &execRecorder{}
	applier := &rlsync.Applier{Logger: rlsync.NewTestLogger(t)}
	stmts := rlsync.SplitStatements("CREATE TABLE a (id int);\nCREATE TABLE b (id int);")

	result, err := applier.ApplySchema(ctx, db, stmts)
	assert.Nil(t, err)
	check.Equal(t, 2, result.Applied)
	check.Equal(t, 0, result.Skipped)
	check.Equal(t, 0, len(result.Errors))
	check.Equal(t, []string{
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
	}, db.executed)
}

func TestApplySkipsDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &execRecorder{errs: map[string]error{
		"CREATE TABLE a (id int)": pgErr("42P07"),
	}}
	applier := &rlsync.Applier{Logger: rlsync.NewTestLogger(t)}
	stmts := rlsync.SplitStatements("CREATE TABLE a (id int);\nCREATE TABLE b (id int);")

	result, err := applier.ApplySchema(ctx, db, stmts)
	assert.Nil(t, err)
	check.Equal(t, 1, result.Applied)
	check.Equal(t, 1, result.Skipped)
	check.Equal(t, 0, len(result.Errors))
}

func TestApplyRecordsRecoverableErrorsAndContinues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// 42704 undefined_object: the referenced role does not exist.
	db := &execRecorder{errs: map[string]error{
		"CREATE POLICY p ON t TO missing USING (true)": pgErr("42704"),
	}}
	applier := &rlsync.Applier{Logger: rlsync.NewTestLogger(t)}
	policies := []rlsync.Policy{
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "t", Name: "p"}, Definition: "CREATE POLICY p ON t TO missing USING (true)"},
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "t", Name: "q"}, Definition: "CREATE POLICY q ON t USING (true)"},
	}

	result, err := applier.ApplyPolicies(ctx, db, policies)
	assert.Nil(t, err)
	check.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, len(result.Errors))
	check.Equal(t, "CREATE POLICY p ON t TO missing USING (true)", result.Errors[0].Statement)
	check.Equal(t, 2, len(db.executed))
}

func TestApplyAbortsOnSyntaxError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &execRecorder{errs: map[string]error{
		"CREATE TABLE broken (": pgErr("42601"),
	}}
	applier := &rlsync.Applier{Logger: rlsync.NewTestLogger(t)}
	stmts := []rlsync.Statement{
		{Text: "CREATE TABLE broken ("},
		{Text: "CREATE TABLE never_reached (id int)"},
	}

	result, err := applier.ApplySchema(ctx, db, stmts)
	check.Error(t, err)
	check.Equal(t, 0, result.Applied)
	check.Equal(t, []string{"CREATE TABLE broken ("}, db.executed)
}

func TestApplyAbortsOnConnectionFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// A non-server error means the connection itself is unusable.
	db := &execRecorder{errs: map[string]error{
		"CREATE TABLE a (id int)": errors.New("connection refused"),
	}}
	applier := &rlsync.Applier{Logger: rlsync.NewTestLogger(t)}
	stmts := []rlsync.Statement{
		{Text: "CREATE TABLE a (id int)"},
		{Text: "CREATE TABLE b (id int)"},
	}

	result, err := applier.ApplySchema(ctx, db, stmts)
	check.Error(t, err)
	check.Equal(t, 0, result.Applied)
	check.Equal(t, 1, len(db.executed))
}

func TestApplyErrorMessage(t *testing.T) {
	t.Parallel()
	aerr := rlsync.ApplyError{Statement: "CREATE POLICY p ON t USING (true)", Err: errors.New("boom")}
	check.Equal(t, "boom: CREATE POLICY p ON t USING (true)", aerr.Error())
}
