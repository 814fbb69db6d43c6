package pgtools

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes, per https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeDuplicateDatabase = "42P04"
	codeDuplicateFunction = "42723"
	codeDuplicateObject   = "42710"
	codeDuplicateSchema   = "42P06"
	codeDuplicateTable    = "42P07"
	codeDuplicateColumn   = "42701"
	codeSyntaxError       = "42601"
)

// IsDuplicate reports whether err is a Postgres "already exists" error.
// These are ignorable when re-applying DDL to a target that already has
// some of the objects: the apply is idempotent with respect to them.
func IsDuplicate(err error) bool {
	var perr *pgconn.PgError
	if !errors.As(err, &perr) {
		return false
	}
	switch perr.Code {
	case codeDuplicateDatabase, codeDuplicateFunction, codeDuplicateObject,
		codeDuplicateSchema, codeDuplicateTable, codeDuplicateColumn:
		return true
	}
	return false
}

// IsFatal reports whether err means the run cannot usefully continue.
// Connection-class failures (including errors that never reached the
// server) and outright syntax errors are fatal; any other statement-level
// server error is recoverable and should be recorded instead.
func IsFatal(err error) bool {
	var perr *pgconn.PgError
	if !errors.As(err, &perr) {
		// Not a server-reported error: the connection itself is broken,
		// the context was canceled, or the driver failed.
		return true
	}
	if perr.Code == codeSyntaxError {
		return true
	}
	switch pgErrorClass(perr.Code) {
	case "08": // connection exception
		return true
	case "57": // operator intervention (shutdown, crash)
		return true
	case "53": // insufficient resources
		return true
	}
	return false
}

func pgErrorClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

// ErrorData returns as much structured information as possible about an
// error reported by the PostgreSQL server, for logging purposes.
func ErrorData(err error) map[string]any {
	data := make(map[string]any)
	var perr *pgconn.PgError
	if errors.As(err, &perr) {
		data["pg_code"] = perr.Code
		if perr.Detail != "" {
			data["pg_detail"] = perr.Detail
		}
		if perr.Hint != "" {
			data["pg_hint"] = perr.Hint
		}
		if perr.SchemaName != "" {
			data["pg_schema"] = perr.SchemaName
		}
		if perr.TableName != "" {
			data["pg_table"] = perr.TableName
		}
		if perr.ColumnName != "" {
			data["pg_column"] = perr.ColumnName
		}
		if perr.ConstraintName != "" {
			data["pg_constraint"] = perr.ConstraintName
		}
		if perr.Where != "" {
			data["pg_where"] = perr.Where
		}
		if perr.Severity != "" {
			data["pg_severity"] = perr.Severity
		}
	}
	return data
}
