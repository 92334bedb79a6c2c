package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/model"
	"github.com/nao1215/rainbow/internal/report"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <value>",
		Short: "Find the entry for a plaintext or digest",
		Long: `Lookup finds the first entry whose plaintext or any of whose digests
matches value. Digests are matched case-insensitively.

With --pattern, "%" matches any run of characters and "_" matches one
character.

Examples:
  rainbow lookup 5d41402abc4b2a76b9719d911017c592
  rainbow lookup --by plaintext hello
  rainbow lookup --pattern 'pass%' --json`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}

	cmd.Flags().String("by", model.FieldAny.String(), "Column to match: any, plaintext or hash")
	cmd.Flags().Bool("pattern", false, "Treat the value as a LIKE pattern")
	addReportFlags(cmd)

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	by, err := cmd.Flags().GetString("by")
	if err != nil {
		return err
	}
	field, err := model.ParseField(by)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer e.closeStore(db)

	writer, err := e.reportWriter(e.out)
	if err != nil {
		return err
	}

	ctx, stop := e.signalContext(cmd.Context())
	defer stop()

	return e.lookupValue(ctx, db, writer, field, args[0])
}

// lookupValue looks up value and writes the result, found or not.
func (e *env) lookupValue(ctx context.Context, db *database.RainbowDB, writer report.Writer, field model.Field, value string) error {
	entry, err := db.LookupField(ctx, field, value)
	if err != nil {
		return err
	}

	e.logger.Debug("lookup finished", "field", field.String(), "found", entry != nil)

	_, err = writer.WriteLookup(report.NewLookupResult(value, field, entry))
	return err
}
