// Package cli implements the certify command-line interface.
//
// # Commands
//
//   - compose: render one layout onto a template from JSON data
//   - issue: issue certificates for staff and courses, with share links
//   - staff-code: allocate staff codes
//
// All commands accept --config (TOML) and --verbose (-v) for debug-level
// logging. Loggers travel through the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds the persistent flags.
type rootOpts struct {
	verbose    bool
	configPath string
}

// Execute runs the certify CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "certify",
		Short:        "certify composes completion certificates onto template images",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("certify %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML 配置文件路径")

	root.AddCommand(newComposeCmd(opts))
	root.AddCommand(newIssueCmd(opts))
	root.AddCommand(newStaffCodeCmd(opts))

	return root
}
