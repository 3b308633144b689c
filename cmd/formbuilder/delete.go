package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <form>",
	Short: "Remove a form from the saved collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	kept := make([]model.FormSchema, 0, len(schemas)-1)
	for _, candidate := range schemas {
		if candidate.ID != schema.ID {
			kept = append(kept, candidate)
		}
	}
	if err := store.Save(kept); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %q (%s)\n", schema.Name, schema.ID)
	return nil
}
