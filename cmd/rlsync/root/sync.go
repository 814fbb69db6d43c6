package root

import (
	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var syncCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "sync",
	Short: "Migrate the source schema and its policies to the target",
	Long: shared.CLIHelp(`
Runs the full pipeline:

- dump the source schema with pg_dump
- extract every row-level-security policy from the raw dump
- filter excluded namespaces (default: storage) out of the schema
- apply the filtered schema to the target, then apply the policies
- verify that every extracted policy is present on the target

The apply phases are best-effort: "already exists" errors are skipped,
other statement-level errors are recorded and the run continues, and
nothing is rolled back on partial failure. The final report names every
policy missing from the target.

Exits 0 on a clean run, 1 on a fatal error, and 2 when the run completed
but the report contains warnings (missing policies, failed statements).
	`),
	Example: shared.CLIExample(`
# Sync prod into test, writing artifacts for auditing
rlsync sync -s $PROD_URL -t $TEST_URL -o ./artifacts
# Exclude more than just the storage namespace
rlsync sync -s $PROD_URL -t $TEST_URL -x storage,extensions
	`),
	GroupID:          "syncing",
	TraverseChildren: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shared.State.Parse()
		source := shared.State.Source()
		target := shared.State.Target()
		if err := shared.Validate(source, target); err != nil {
			return err
		}

		_, logger := shared.State.Logger()
		db, err := shared.OpenDB(target.Value())
		if err != nil {
			return err
		}
		defer db.Close()

		syncer := rlsync.NewSyncer(rlsync.PGDump{
			Database: source.Value(),
			Path:     shared.State.PGDumpPath().Value(),
		})
		syncer.Logger = logger
		syncer.ExcludedSchemas = shared.State.ExcludeSchemas()
		syncer.OutDir = shared.State.OutDir().Value()

		report, err := syncer.Sync(cmd.Context(), db)
		if err != nil {
			return err
		}
		if err := shared.ReportExit(report); err != nil {
			cmd.SilenceUsage = true
			return err
		}
		return nil
	},
}
