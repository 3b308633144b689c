package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

var (
	importOperation string
	importName      string
)

var importCmd = &cobra.Command{
	Use:   "import <openapi-document>",
	Short: "Import a form from an OpenAPI operation's request body",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOperation, "operation", "o", "", "operationId to import (required)")
	importCmd.Flags().StringVar(&importName, "name", "", "override the imported form's name")
	_ = importCmd.MarkFlagRequired("operation")
}

func runImport(cmd *cobra.Command, args []string) error {
	importer := openapi.New()
	schema, err := importer.ImportFile(cmd.Context(), args[0], importOperation)
	if err != nil {
		return err
	}
	if importName != "" {
		schema.Name = importName
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	schemas, err := store.Load()
	if err != nil {
		return fmt.Errorf("load saved forms: %w", err)
	}

	// Re-importing under an existing name replaces that entry.
	replaced := false
	for i, existing := range schemas {
		if existing.Name == schema.Name {
			schema.ID = existing.ID
			schema.CreatedAt = existing.CreatedAt
			schemas[i] = schema
			replaced = true
			break
		}
	}
	if !replaced {
		schemas = append(schemas, schema)
	}

	if err := store.Save(schemas); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %q (%s) with %d fields\n", schema.Name, schema.ID, len(schema.Fields))
	return nil
}
