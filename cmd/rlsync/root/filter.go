package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var filterCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "filter",
	Short: "Dump the source schema with excluded namespaces removed",
	Long: shared.CLIHelp(`
Dumps the source schema and removes every statement whose target
namespace is in the exclusion set (default: storage). Statement order is
preserved. The filter matches on namespace only and never special-cases
policy statements; policy extraction runs separately against the
unfiltered dump.

The filtered schema is printed to stdout as DDL; with --out-dir it is
instead written to <out-dir>/schema.filtered.sql.
	`),
	Example: shared.CLIExample(`
rlsync filter -s $PROD_URL > schema.filtered.sql
rlsync filter -s $PROD_URL -x storage,extensions -o ./artifacts
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

		filtered, err := syncer.Filtered(cmd.Context())
		if err != nil {
			return err
		}
		rendered := rlsync.RenderStatements(filtered)
		outDir := shared.State.OutDir().Value()
		if outDir == "" {
			fmt.Print(rendered)
			return nil
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(outDir, rlsync.FilteredSchemaFile), []byte(rendered), 0o644)
	},
}
