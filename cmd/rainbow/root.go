package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for rainbow.
// Running it without a subcommand opens the interactive menu.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rainbow",
		Short: "Local rainbow table of MD5, SHA-1, SHA-256 and SHA-512 digests",
		Long: `rainbow stores plaintext strings together with their MD5, SHA-1, SHA-256
and SHA-512 digests in a local SQLite database, and finds the plaintext
behind a digest you already have.

Word lists can be imported from files or URLs, optionally through a SOCKS5
proxy or an embedded Tor daemon.

Run without a subcommand to open the interactive menu.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runMenuCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("db-dir", "", "Directory holding rainbow.db (default: ~/.rainbow or the XDG data directory)")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default: .rainbow.yaml)")

	cmd.AddCommand(NewMenuCmd())
	cmd.AddCommand(NewAddCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewCountCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
