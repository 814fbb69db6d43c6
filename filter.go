package rlsync

// DefaultExcludedSchemas is the default namespace exclusion set. The
// storage namespace is managed by a separate subsystem and is never
// migrated by this pipeline.
var DefaultExcludedSchemas = []string{"storage"}

// FilterSchema returns the dump's statements minus those whose target
// namespace is in the exclusion set, preserving the original statement
// order. Matching is by namespace only: the filter does not examine or
// special-case policy statements, so it is fully independent of
// [ExtractPolicies], which always runs against the unfiltered dump.
func FilterSchema(dump SchemaDump, exclude []string) []Statement {
	excluded := make(map[string]bool, len(exclude))
	for _, schema := range exclude {
		excluded[schema] = true
	}
	kept := make([]Statement, 0, len(dump.Statements))
	for _, stmt := range dump.Statements {
		if excluded[stmt.Schema] {
			continue
		}
		kept = append(kept, stmt)
	}
	return kept
}
