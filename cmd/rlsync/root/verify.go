package root

import (
	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var verifyCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "verify",
	Short: "Compare source policies against the target without applying",
	Long: shared.CLIHelp(`
Dumps the source schema, extracts its policies, and compares them against
the policies currently present on the target. Nothing is applied and
nothing on the target is mutated.

Reports the source policy counts (total, excluded, migratable), the
target count, and the name of every policy missing from the target.

If any policies are missing, exits with status code 2.
Otherwise exits with status code 0.
	`),
	Example: shared.CLIExample(`
rlsync verify -s $PROD_URL -t $TEST_URL
	`),
	GroupID:          "inspecting",
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

		report, err := syncer.Verify(cmd.Context(), db)
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
