// Package rlsync synchronizes a PostgreSQL schema and its row-level
// security policies from a source database to a target database.
//
// The pipeline dumps the source schema, extracts every CREATE POLICY
// statement from the raw dump, filters excluded namespaces out of the
// schema, applies the filtered schema and then the policies to the target,
// and finally verifies that every extracted policy is actually present on
// the target. Extraction always happens before filtering, so the filter
// can never drop a security policy silently.
package rlsync

import (
	"context"
	"database/sql"
)

// Sync runs the full pipeline from source to the target db. See
// [Syncer.Sync] for the details.
func Sync(ctx context.Context, db *sql.DB, source DumpSource, logger Logger) (*Report, error) {
	syncer := NewSyncer(source)
	syncer.Logger = logger
	return syncer.Sync(ctx, db)
}

// Verify compares the source's policies against the target without
// applying anything. See [Syncer.Verify].
func Verify(ctx context.Context, db *sql.DB, source DumpSource, logger Logger) (*Report, error) {
	syncer := NewSyncer(source)
	syncer.Logger = logger
	return syncer.Verify(ctx, db)
}

// Extract dumps the source and returns the extracted policies. See
// [Syncer.Extraction].
func Extract(ctx context.Context, source DumpSource, logger Logger) (Extraction, error) {
	syncer := NewSyncer(source)
	syncer.Logger = logger
	return syncer.Extraction(ctx)
}

// Filter dumps the source and returns the filtered schema statements. See
// [Syncer.Filtered].
func Filter(ctx context.Context, source DumpSource, logger Logger) ([]Statement, error) {
	syncer := NewSyncer(source)
	syncer.Logger = logger
	return syncer.Filtered(ctx)
}
