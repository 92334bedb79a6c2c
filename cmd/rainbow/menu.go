package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/model"
)

// Menu choices, in display order.
const (
	menuAdd    = "Add string to rainbow table"
	menuLookup = "Lookup string in rainbow table"
	menuImport = "Add remote file list to rainbow table"
	menuCount  = "Get count of entries in rainbow table"
)

// menuOptions lists the menu choices in display order.
var menuOptions = []string{menuAdd, menuLookup, menuImport, menuCount}

// errEmptyInput is returned when a menu prompt is answered with nothing.
var errEmptyInput = errors.New("no value entered")

// prompter asks the user questions. ptermPrompter is the terminal
// implementation; tests substitute a scripted one.
type prompter interface {
	Select(title string, options []string) (string, error)
	Input(prompt string) (string, error)
}

// ptermPrompter prompts with pterm's interactive printers.
type ptermPrompter struct{}

// Select implements prompter.
func (ptermPrompter) Select(title string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show(title)
}

// Input implements prompter.
func (ptermPrompter) Input(prompt string) (string, error) {
	return pterm.DefaultInteractiveTextInput.Show(prompt)
}

// NewMenuCmd creates the menu command.
func NewMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Choose an action from an interactive menu",
		Long: `Menu asks what to do and then prompts for the value:
  - add a string
  - look up a plaintext or digest
  - import a word list from a URL
  - count the entries

This is also what runs when rainbow is started without a subcommand.`,
		Args: cobra.NoArgs,
		RunE: runMenuCmd,
	}
}

// runMenuCmd executes the menu command.
func runMenuCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := e.signalContext(cmd.Context())
	defer stop()

	return e.runMenu(ctx, ptermPrompter{})
}

// runMenu shows the menu once and runs the chosen action.
func (e *env) runMenu(ctx context.Context, p prompter) error {
	fmt.Fprintf(e.out, "Welcome to RainbowTable %s\n\n", getVersion())

	choice, err := p.Select("What would you like to do?", menuOptions)
	if err != nil {
		return fmt.Errorf("failed to read menu choice: %w", err)
	}
	e.logger.Debug("menu choice", "choice", choice)

	switch choice {
	case menuAdd:
		value, err := prompt(p, "Enter a string to add to the rainbow table.", false)
		if err != nil {
			return err
		}
		return e.withStore(func(db *database.RainbowDB) error {
			fmt.Fprintf(e.out, "Adding %q to the rainbow table...\n", value)
			return e.addValue(ctx, db, value)
		})

	case menuLookup:
		value, err := prompt(p, "Enter the value to lookup:", true)
		if err != nil {
			return err
		}
		writer, err := e.reportWriter(e.out)
		if err != nil {
			return err
		}
		return e.withStore(func(db *database.RainbowDB) error {
			return e.lookupValue(ctx, db, writer, model.FieldAny, value)
		})

	case menuImport:
		url, err := prompt(p, "Enter the URL of the file (each line is added as an entry):", true)
		if err != nil {
			return err
		}
		_, err = e.importLocations(ctx, []string{url}, true)
		return err

	case menuCount:
		return e.withStore(func(db *database.RainbowDB) error {
			return e.printCount(ctx, db)
		})

	default:
		return fmt.Errorf("invalid menu choice %q", choice)
	}
}

// withStore opens the rainbow table, runs fn and closes the table.
func (e *env) withStore(fn func(db *database.RainbowDB) error) error {
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer e.closeStore(db)
	return fn(db)
}

// prompt asks for a value. With trim set, surrounding whitespace is removed;
// an empty answer is an error either way.
func prompt(p prompter, text string, trim bool) (string, error) {
	value, err := p.Input(text)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if trim {
		value = strings.TrimSpace(value)
	}
	if value == "" {
		return "", errEmptyInput
	}
	return value, nil
}
