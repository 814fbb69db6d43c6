package shared

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// OpenDB opens a database/sql handle to the given "postgres://..."
// connection string using the pgx driver.
func OpenDB(connstr string) (*sql.DB, error) {
	connstr, err := setDefaultStatementCachingParameter(connstr)
	if err != nil {
		return nil, err
	}
	return sql.Open("pgx", connstr)
}

// If the user has not explicitly specified a pgx statement caching
// parameter in their connection string, set it to "exec", which works
// correctly even when connecting through bouncers/poolers like Pgbouncer.
// The default value pgx chooses is "cache_statement", which breaks when
// you connect to a pooler, and hosted Postgres environments almost always
// put a pooler in front of the database.
func setDefaultStatementCachingParameter(connstr string) (string, error) {
	eurl, err := url.Parse(connstr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection URL: %w", err)
	}
	query := eurl.Query()
	// Parameter name and value come from the pgx code, see
	// https://pkg.go.dev/github.com/jackc/pgx/v5#QueryExecMode
	queryModeParam := "default_query_exec_mode"
	execModeValue := "exec"
	if !query.Has(queryModeParam) {
		query.Add(queryModeParam, execModeValue)
	}
	eurl.RawQuery = query.Encode()
	return eurl.String(), nil
}
