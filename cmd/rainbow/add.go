package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/model"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <string>...",
		Short: "Add strings to the rainbow table",
		Long: `Add computes the MD5, SHA-1, SHA-256 and SHA-512 digests of each string
and stores them. A string that is already in the table is left untouched.

Examples:
  rainbow add hello
  rainbow add password letmein "correct horse battery staple"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAddCmd,
	}
}

// runAddCmd executes the add command.
func runAddCmd(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer e.closeStore(db)

	ctx, stop := e.signalContext(cmd.Context())
	defer stop()

	for _, value := range args {
		if err := e.addValue(ctx, db, value); err != nil {
			return err
		}
	}
	return nil
}

// addValue stores value and prints the entry, or a notice if it already exists.
func (e *env) addValue(ctx context.Context, db *database.RainbowDB, value string) error {
	e.logger.Debug("adding entry", "plaintext", value)

	entry, err := model.NewEntry(value)
	if err != nil {
		return err
	}

	inserted, err := db.Insert(ctx, entry)
	if err != nil {
		return err
	}

	if !inserted {
		fmt.Fprintf(e.out, "Entry with plaintext %q already exists in the rainbow table.\n", value)
		return nil
	}

	fmt.Fprintln(e.out, "Added an entry to the rainbow table:")
	fmt.Fprintln(e.out, entry.String())
	return nil
}
