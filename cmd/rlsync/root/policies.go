package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var policiesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "policies",
	Short: "Show the target's current policies as DDL",
	Long: shared.CLIHelp(`
Introspects pg_policies on the target and prints every row-level-security
policy as a CREATE POLICY statement, excluding the excluded namespaces.
Useful for auditing what a target actually enforces, independent of any
dump.
	`),
	Example: shared.CLIExample(`
rlsync policies -t $TEST_URL
	`),
	GroupID:          "inspecting",
	TraverseChildren: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shared.State.Parse()
		target := shared.State.Target()
		if err := shared.Validate(target); err != nil {
			return err
		}

		db, err := shared.OpenDB(target.Value())
		if err != nil {
			return err
		}
		defer db.Close()

		policies, err := rlsync.LoadTargetPolicies(cmd.Context(), db, shared.State.ExcludeSchemas())
		if err != nil {
			return err
		}
		for _, p := range policies {
			fmt.Println(p.String())
		}
		return nil
	},
}
