package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var extractCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "extract",
	Short: "Extract row-level-security policies from the source schema",
	Long: shared.CLIHelp(`
Dumps the source schema and extracts every CREATE POLICY statement from
the raw dump, before any filtering, so namespace filtering can never drop
a policy. Policies in excluded namespaces are counted but not emitted.

The extracted policies are printed to stdout as DDL; with --out-dir they
are instead written to <out-dir>/policies_only.sql, suitable for
independent application and auditing.
	`),
	Example: shared.CLIExample(`
rlsync extract -s $PROD_URL > policies_only.sql
rlsync extract -s $PROD_URL -o ./artifacts
	`),
	GroupID:          "syncing",
	TraverseChildren: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shared.State.Parse()
		source := shared.State.Source()
		if err := shared.Validate(source); err != nil {
			return err
		}

		_, logger := shared.State.Logger()
		syncer := rlsync.NewSyncer(rlsync.PGDump{
			Database: source.Value(),
			Path:     shared.State.PGDumpPath().Value(),
		})
		syncer.Logger = logger
		syncer.ExcludedSchemas = shared.State.ExcludeSchemas()

		extraction, err := syncer.Extraction(cmd.Context())
		if err != nil {
			return err
		}
		rendered := rlsync.RenderPolicies(extraction.Policies)
		outDir := shared.State.OutDir().Value()
		if outDir == "" {
			fmt.Print(rendered)
			return nil
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(outDir, rlsync.PoliciesFile), []byte(rendered), 0o644)
	},
}
