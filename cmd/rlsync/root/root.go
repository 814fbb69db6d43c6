package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

var Command = &cobra.Command{ //nolint:gochecknoglobals
	Version: shared.VersionString(),
	Use:     "rlsync",
	Short:   "sync postgres schemas and row-level-security policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf(`invalid command: "%s"`, args[0])
		}
		return cmd.Help()
	},
}

func init() { //nolint:gochecknoinits
	Command.CompletionOptions.HiddenDefaultCmd = true
	Command.TraverseChildren = true
	Command.SilenceErrors = true
	Command.SilenceUsage = false
	Command.SetVersionTemplate("{{.Version}}\n")

	shared.State.Flags.LogFormat = Command.PersistentFlags().StringP(
		"log-format",
		"l",
		string(shared.LogFormatText),
		fmt.Sprintf("[RLS_LOG_FORMAT] '%s' or '%s', the log line format", shared.LogFormatText, shared.LogFormatJSON),
	)
	shared.State.Flags.Source = Command.PersistentFlags().StringP(
		"source",
		"s",
		"",
		"[RLS_SOURCE] a 'postgres://...' connection string for the source database",
	)
	shared.State.Flags.Target = Command.PersistentFlags().StringP(
		"target",
		"t",
		"",
		"[RLS_TARGET] a 'postgres://...' connection string for the target database",
	)
	shared.State.Flags.OutDir = Command.PersistentFlags().StringP(
		"out-dir",
		"o",
		"",
		"[RLS_OUT_DIR] a directory to write the filtered-schema and policies artifacts to",
	)
	shared.State.Flags.ExcludeSchemas = Command.PersistentFlags().StringP(
		"exclude-schemas",
		"x",
		"",
		"[RLS_EXCLUDE_SCHEMAS] comma-separated namespaces to exclude (default: storage)",
	)
	shared.State.Flags.PGDumpPath = Command.PersistentFlags().String(
		"pg-dump",
		"",
		"[RLS_PG_DUMP] the pg_dump binary to invoke",
	)
	shared.State.Flags.ConfigFile = Command.PersistentFlags().StringP(
		"configfile",
		"f",
		"",
		"[RLS_CONFIGFILE] a path to a configuration file",
	)
	_ = Command.MarkPersistentFlagDirname("out-dir")

	Command.AddGroup(
		&cobra.Group{
			ID:    "syncing",
			Title: "Syncing:",
		},
		&cobra.Group{
			ID:    "inspecting",
			Title: "Inspecting:",
		},
		&cobra.Group{
			ID:    "dev",
			Title: "Development:",
		},
	)

	// syncing
	Command.AddCommand(syncCmd)
	Command.AddCommand(extractCmd)
	Command.AddCommand(filterCmd)

	// inspecting
	Command.AddCommand(verifyCmd)
	Command.AddCommand(policiesCmd)

	// dev
	Command.AddCommand(configCmd)
	Command.AddCommand(versionCmd)
	Command.SetHelpCommandGroupID("dev")
}
