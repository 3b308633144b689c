package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render <form>",
	Short: "Render a saved form as an HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "O", "", "write the page to a file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
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

	renderer, err := html.New()
	if err != nil {
		return err
	}
	page, err := renderer.Render(cmd.Context(), schema)
	if err != nil {
		return err
	}

	if renderOutput == "" {
		_, err = cmd.OutOrStdout().Write(page)
		return err
	}
	if err := os.WriteFile(renderOutput, page, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", renderOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", renderOutput, len(page))
	return nil
}
