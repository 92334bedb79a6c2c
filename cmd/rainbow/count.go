package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/database"
)

// NewCountCmd creates the count command.
func NewCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of entries in the rainbow table",
		Args:  cobra.NoArgs,
		RunE:  runCountCmd,
	}
}

// runCountCmd executes the count command.
func runCountCmd(cmd *cobra.Command, _ []string) error {
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

	return e.printCount(ctx, db)
}

// printCount prints the number of stored entries.
func (e *env) printCount(ctx context.Context, db *database.RainbowDB) error {
	count, err := db.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "There are %s entries in the rainbow table.\n", humanize.Comma(count))
	return nil
}
