// Command formbuilder manages the saved form collection from the terminal:
// list, inspect, import, render, and fill forms backed by the same slot file
// the library persists to.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

var (
	storeDir      string
	storeEncoding string
)

var rootCmd = &cobra.Command{
	Use:           "formbuilder",
	Short:         "Manage saved form schemas",
	Long:          "formbuilder works against a saved-forms collection on disk: list and inspect schemas, import them from OpenAPI documents, render them to HTML, and fill them interactively.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeDir, "dir", "d", ".", "directory holding the saved-forms slot file")
	rootCmd.PersistentFlags().StringVar(&storeEncoding, "encoding", "json", "slot file encoding (json or yaml)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fillCmd)
}

func openStore() (*storage.FileStore, error) {
	encoding := storage.EncodingJSON
	switch strings.ToLower(strings.TrimSpace(storeEncoding)) {
	case "", "json":
	case "yaml", "yml":
		encoding = storage.EncodingYAML
	default:
		return nil, fmt.Errorf("unknown encoding %q (want json or yaml)", storeEncoding)
	}
	return storage.NewFileStore(storeDir, storage.WithEncoding(encoding))
}

// findSchema resolves ref against the collection by id first, then by exact
// name, then by unique name prefix.
func findSchema(schemas []model.FormSchema, ref string) (model.FormSchema, error) {
	for _, schema := range schemas {
		if schema.ID == ref {
			return schema, nil
		}
	}
	for _, schema := range schemas {
		if schema.Name == ref {
			return schema, nil
		}
	}

	var matches []model.FormSchema
	lowered := strings.ToLower(ref)
	for _, schema := range schemas {
		if strings.HasPrefix(strings.ToLower(schema.Name), lowered) {
			matches = append(matches, schema)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.FormSchema{}, fmt.Errorf("no saved form matches %q", ref)
	default:
		names := make([]string, len(matches))
		for i, schema := range matches {
			names[i] = schema.Name
		}
		return model.FormSchema{}, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(names, ", "))
	}
}
