package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

var fillPretty bool

var fillCmd = &cobra.Command{
	Use:   "fill <form>",
	Short: "Fill a saved form interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	fillCmd.Flags().BoolVar(&fillPretty, "pretty", false, "print key=value lines instead of JSON")
}

func runFill(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	schemas, err := store.Load()
	if err != nil {
		return fmt.Errorf("load saved forms: %w", err)
	}
	schema, err := findSchema(schemas, args[0])
	if err != nil {
		return err
	}

	format := tui.OutputFormatJSON
	if fillPretty {
		format = tui.OutputFormatPrettyText
	}
	renderer := tui.New(tui.WithOutputFormat(format))

	output, err := renderer.Fill(cmd.Context(), schema)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
