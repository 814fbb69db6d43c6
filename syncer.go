package rlsync

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rlsync/rlsync/internal/sessionlock"
)

const (
	// FilteredSchemaFile is the artifact name for the filtered schema.
	FilteredSchemaFile = "schema.filtered.sql"
	// PoliciesFile is the artifact name for the extracted policies.
	PoliciesFile = "policies_only.sql"

	// lockName keys the advisory lock that prevents two runs from
	// interleaving DDL against the same target.
	lockName = "rlsync"
)

// Syncer should be instantiated with [NewSyncer] rather than used
// directly. It runs the policy-preserving schema migration pipeline:
//
//	DUMP -> EXTRACT -> FILTER -> APPLY_SCHEMA -> APPLY_POLICIES -> VERIFY
//
// Each phase fully materializes its output before the next phase starts;
// nothing in a run executes concurrently with another phase of the same
// run. Policies are always extracted from the raw dump before any
// filtering, so filtering can never cause a policy to be lost.
type Syncer struct {
	// Source produces the schema dump text.
	Source DumpSource
	// ExcludedSchemas are the namespaces this pipeline never migrates.
	//
	// [NewSyncer] defaults it to [DefaultExcludedSchemas].
	ExcludedSchemas []string
	// OutDir, when non-empty, is where the filtered-schema and
	// policies-only artifacts are written. Artifacts are written before
	// the apply phases run, so they survive a failed run for inspection.
	OutDir string
	// Logger is used by the Syncer to log as it operates. Defaults to
	// nil, which prevents any messages from being logged.
	Logger Logger
}

// NewSyncer creates a [Syncer] with default values for all configurable
// fields:
//
//   - ExcludedSchemas: [DefaultExcludedSchemas]
//   - OutDir: "" (no artifacts written)
//   - Logger: nil (no messages logged)
//
// To configure these fields, just set the values on the struct.
func NewSyncer(source DumpSource) *Syncer {
	return &Syncer{
		Source:          source,
		ExcludedSchemas: DefaultExcludedSchemas,
	}
}

// Sync runs the whole pipeline against the target database and returns the
// migration report. The error return is non-nil only for fatal failures
// (dump failure, unusable connection, fatal apply error); recoverable
// problems land in the report, whose HasWarnings distinguishes DONE from
// DONE_WITH_WARNINGS.
//
// An advisory lock is held around the apply and verify phases so that two
// syncs against the same target cannot interleave. Partial progress is
// never rolled back: the target's object set only grows.
func (s *Syncer) Sync(ctx context.Context, db *sql.DB) (*Report, error) {
	extraction, filtered, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		SourceTotal:    extraction.SourceTotal(),
		SourceExcluded: len(extraction.Excluded),
		Extracted:      len(extraction.Policies),
		Malformed:      extraction.Malformed,
	}
	err = sessionlock.With(ctx, db, lockName, func(conn *sql.Conn) error {
		applier := &Applier{Logger: s.Logger}
		schemaResult, err := applier.ApplySchema(ctx, conn, filtered)
		report.Schema = schemaResult
		if err != nil {
			return err
		}
		policyResult, err := applier.ApplyPolicies(ctx, conn, extraction.Policies)
		report.Policies = policyResult
		if err != nil {
			return err
		}
		logInfo(ctx, s.Logger, "verifying target policies")
		target, err := TargetPolicies(ctx, conn, s.ExcludedSchemas)
		if err != nil {
			return err
		}
		report.TargetCount = len(target)
		report.Missing = MissingPolicies(extraction.Policies, target)
		return nil
	})
	if err != nil {
		return report, err
	}
	report.Log(ctx, s.Logger)
	return report, nil
}

// Verify runs only the dump, extract, and verify phases: it compares the
// source's policies against what the target currently has, without
// applying anything. Purely diagnostic.
func (s *Syncer) Verify(ctx context.Context, db Executor) (*Report, error) {
	extraction, _, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	report := &Report{
		SourceTotal:    extraction.SourceTotal(),
		SourceExcluded: len(extraction.Excluded),
		Extracted:      len(extraction.Policies),
		Malformed:      extraction.Malformed,
	}
	target, err := TargetPolicies(ctx, db, s.ExcludedSchemas)
	if err != nil {
		return nil, err
	}
	report.TargetCount = len(target)
	report.Missing = MissingPolicies(extraction.Policies, target)
	report.Log(ctx, s.Logger)
	return report, nil
}

// Extraction runs the dump and extract phases and returns the extraction
// result, without touching any target.
func (s *Syncer) Extraction(ctx context.Context) (Extraction, error) {
	extraction, _, err := s.prepare(ctx)
	return extraction, err
}

// Filtered runs the dump and filter phases and returns the filtered
// schema, without touching any target.
func (s *Syncer) Filtered(ctx context.Context) ([]Statement, error) {
	_, filtered, err := s.prepare(ctx)
	return filtered, err
}

// prepare runs the read-only front half of the pipeline: dump, extract,
// filter, and artifact writing. Extraction happens against the raw dump,
// before filtering.
func (s *Syncer) prepare(ctx context.Context) (Extraction, []Statement, error) {
	logInfo(ctx, s.Logger, "dumping source schema")
	raw, err := s.Source.Dump(ctx)
	if err != nil {
		return Extraction{}, nil, fmt.Errorf("dump: %w", err)
	}
	dump := ParseDump(raw)
	logInfo(ctx, s.Logger, "parsed dump",
		LogField{Key: "statements", Value: len(dump.Statements)})

	extraction := ExtractPolicies(ctx, dump, s.ExcludedSchemas, s.Logger)
	logInfo(ctx, s.Logger, "extracted policies",
		LogField{Key: "total", Value: extraction.SourceTotal()},
		LogField{Key: "excluded", Value: len(extraction.Excluded)},
		LogField{Key: "migratable", Value: len(extraction.Policies)},
		LogField{Key: "malformed", Value: extraction.Malformed})

	filtered := FilterSchema(dump, s.ExcludedSchemas)
	logInfo(ctx, s.Logger, "filtered schema",
		LogField{Key: "kept", Value: len(filtered)},
		LogField{Key: "removed", Value: len(dump.Statements) - len(filtered)})

	if err := s.writeArtifacts(ctx, extraction, filtered); err != nil {
		return Extraction{}, nil, err
	}
	return extraction, filtered, nil
}

func (s *Syncer) writeArtifacts(ctx context.Context, extraction Extraction, filtered []Statement) error {
	if s.OutDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	schemaPath := filepath.Join(s.OutDir, FilteredSchemaFile)
	if err := os.WriteFile(schemaPath, []byte(RenderStatements(filtered)), 0o644); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	policiesPath := filepath.Join(s.OutDir, PoliciesFile)
	if err := os.WriteFile(policiesPath, []byte(RenderPolicies(extraction.Policies)), 0o644); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	logInfo(ctx, s.Logger, "wrote artifacts",
		LogField{Key: "schema", Value: schemaPath},
		LogField{Key: "policies", Value: policiesPath})
	return nil
}
