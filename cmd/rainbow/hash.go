package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/model"
)

// NewHashCmd creates the hash command.
func NewHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <string>",
		Short: "Print the digests of a string without storing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashCmd,
	}
	addReportFlags(cmd)
	return cmd
}

// runHashCmd executes the hash command. The database is never opened.
func runHashCmd(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	entry, err := model.NewEntry(args[0])
	if err != nil {
		return err
	}

	writer, err := e.reportWriter(e.out)
	if err != nil {
		return err
	}

	_, err = writer.WriteEntry(entry)
	return err
}
