package rlsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/rlsync/rlsync/internal/pgtools"
)

// TargetPolicies queries pg_policies on the target database for the keys
// of every policy currently present, excluding the given namespaces. This
// is a live query, not a dump scan: verification reflects what the target
// actually has after the apply phases ran. It never mutates state.
func TargetPolicies(ctx context.Context, db Executor, exclude []string) ([]PolicyKey, error) {
	query := `
		SELECT schemaname, tablename, policyname
		FROM pg_policies` + excludeClause(exclude) + `
		ORDER BY schemaname, tablename, policyname
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("target policies: %w", err)
	}
	defer rows.Close()
	var keys []PolicyKey
	for rows.Next() {
		var key PolicyKey
		if err := rows.Scan(&key.Schema, &key.Table, &key.Name); err != nil {
			return nil, fmt.Errorf("target policies: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("target policies: %w", err)
	}
	return keys, nil
}

// MissingPolicies returns the keys of source policies that are not present
// on the target, sorted by (schema, table, name). Pure set difference;
// every missing policy is named, never just counted.
func MissingPolicies(source []Policy, target []PolicyKey) []PolicyKey {
	present := make(map[PolicyKey]bool, len(target))
	for _, key := range target {
		present[key] = true
	}
	var missing []PolicyKey
	for _, p := range source {
		if !present[p.PolicyKey] {
			missing = append(missing, p.PolicyKey)
		}
	}
	SortKeys(missing)
	return missing
}

// TargetPolicy is a fully-described policy introspected from the target,
// used by the policies command to render the target's current row-level
// security as DDL.
type TargetPolicy struct {
	PolicyKey
	Permissive bool
	Command    string
	Roles      []string
	Using      string
	WithCheck  string
}

// String renders the policy as a CREATE POLICY statement.
func (p TargetPolicy) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE POLICY %s ON %s",
		pgtools.Identifier(p.Name),
		pgtools.Identifier(p.Schema, p.Table))
	if !p.Permissive {
		b.WriteString(" AS RESTRICTIVE")
	}
	if p.Command != "" && p.Command != "ALL" {
		fmt.Fprintf(&b, " FOR %s", p.Command)
	}
	if len(p.Roles) > 0 {
		quoted := make([]string, 0, len(p.Roles))
		for _, role := range p.Roles {
			quoted = append(quoted, pgtools.Identifier(role))
		}
		fmt.Fprintf(&b, " TO %s", strings.Join(quoted, ", "))
	}
	if p.Using != "" {
		fmt.Fprintf(&b, " USING (%s)", p.Using)
	}
	if p.WithCheck != "" {
		fmt.Fprintf(&b, " WITH CHECK (%s)", p.WithCheck)
	}
	b.WriteString(";")
	return b.String()
}

// LoadTargetPolicies introspects the target's policies in full, excluding
// the given namespaces.
func LoadTargetPolicies(ctx context.Context, db Executor, exclude []string) ([]TargetPolicy, error) {
	query := `
		SELECT schemaname, tablename, policyname,
		       permissive, roles, cmd,
		       COALESCE(qual, ''), COALESCE(with_check, '')
		FROM pg_policies` + excludeClause(exclude) + `
		ORDER BY schemaname, tablename, policyname
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load target policies: %w", err)
	}
	defer rows.Close()
	var policies []TargetPolicy
	for rows.Next() {
		var p TargetPolicy
		var permissive string
		var roles pq.StringArray
		if err := rows.Scan(
			&p.Schema,
			&p.Table,
			&p.Name,
			&permissive,
			&roles,
			&p.Command,
			&p.Using,
			&p.WithCheck,
		); err != nil {
			return nil, fmt.Errorf("load target policies: %w", err)
		}
		p.Permissive = permissive == "PERMISSIVE"
		p.Roles = rolesList(roles)
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load target policies: %w", err)
	}
	return policies, nil
}

// rolesList drops the bare "public" pseudo-role from pg_policies.roles
// since TO public is the CREATE POLICY default.
func rolesList(roles []string) []string {
	if len(roles) == 1 && roles[0] == "public" {
		return nil
	}
	return roles
}

// excludeClause builds a WHERE clause excluding the given namespaces,
// embedded as quoted literals.
func excludeClause(exclude []string) string {
	if len(exclude) == 0 {
		return ""
	}
	literals := make([]string, 0, len(exclude))
	for _, schema := range exclude {
		literals = append(literals, pgtools.Literal(schema))
	}
	return fmt.Sprintf("\n\t\tWHERE schemaname NOT IN (%s)", strings.Join(literals, ", "))
}
