package rlsync

import (
	"context"
)

// Report is the migration report for a single run. It is built
// incrementally during the apply and verify phases, finalized at the end
// of the run, and surfaced to the operator; it is not persisted anywhere.
type Report struct {
	// SourceTotal is the number of policies found in the source dump,
	// including excluded namespaces.
	SourceTotal int
	// SourceExcluded is how many of those belong to excluded namespaces.
	SourceExcluded int
	// Extracted is the number of migratable policies
	// (SourceTotal - SourceExcluded).
	Extracted int
	// Malformed counts policy statements the extractor had to skip.
	Malformed int
	// TargetCount is the number of policies present on the target after
	// the apply phases, excluding excluded namespaces.
	TargetCount int
	// Missing names every source policy not present on the target.
	Missing []PolicyKey
	// Schema and Policies summarize the two apply phases.
	Schema   ApplyResult
	Policies ApplyResult
}

// HasWarnings reports whether the run finished DONE_WITH_WARNINGS: any
// missing policy, recoverable apply error, or malformed statement counts.
// Warnings are terminal; re-entering the pipeline is an operator decision.
func (r *Report) HasWarnings() bool {
	return len(r.Missing) > 0 ||
		len(r.Schema.Errors) > 0 ||
		len(r.Policies.Errors) > 0 ||
		r.Malformed > 0
}

// Log renders the report as human-readable log lines. Counts go out at
// info level; every discrepancy is named at warning level, never just
// counted.
func (r *Report) Log(ctx context.Context, logger Logger) {
	logInfo(ctx, logger, "migration report",
		LogField{Key: "source_policies", Value: r.SourceTotal},
		LogField{Key: "source_excluded", Value: r.SourceExcluded},
		LogField{Key: "source_migratable", Value: r.Extracted},
		LogField{Key: "target_policies", Value: r.TargetCount},
		LogField{Key: "missing", Value: len(r.Missing)},
	)
	for _, key := range r.Missing {
		logWarn(ctx, logger, "policy missing on target",
			LogField{Key: "policy", Value: key.String()})
	}
	for _, aerr := range r.Schema.Errors {
		logWarn(ctx, logger, "schema statement failed",
			LogField{Key: "error", Value: aerr.Err},
			LogField{Key: "statement", Value: truncate(aerr.Statement, 120)})
	}
	for _, aerr := range r.Policies.Errors {
		logWarn(ctx, logger, "policy statement failed",
			LogField{Key: "error", Value: aerr.Err},
			LogField{Key: "statement", Value: truncate(aerr.Statement, 120)})
	}
	if r.Malformed > 0 {
		logWarn(ctx, logger, "malformed policy statements were skipped during extraction",
			LogField{Key: "count", Value: r.Malformed})
	}
}
