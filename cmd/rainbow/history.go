package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/report"
)

// defaultHistoryLimit is the number of import records shown by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent word list imports",
		Long: `History lists recorded imports, newest first, with their line counts and
whether they completed.

Examples:
  rainbow history
  rainbow history --limit 5 --markdown
  rainbow history --json -o imports.json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of imports to show (0 for all)")
	cmd.Flags().StringP("output", "o", "", "Also write the report to this file")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
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

	ctx, stop := e.signalContext(cmd.Context())
	defer stop()

	records, err := db.ListImports(ctx, limit)
	if err != nil {
		return err
	}

	writer, err := e.reportWriter(e.out)
	if err != nil {
		return err
	}

	if outputPath != "" {
		f, err := createOutputFile(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()

		fileWriter, err := e.reportWriter(f)
		if err != nil {
			return err
		}
		writer = report.NewMultiWriter(writer, fileWriter)
	}

	_, err = writer.WriteImports(records)
	return err
}
