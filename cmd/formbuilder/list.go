package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved forms",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	schemas, err := store.Load()
	if err != nil {
		return fmt.Errorf("load saved forms: %w", err)
	}
	if len(schemas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved forms")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tFIELDS\tUPDATED")
	for _, schema := range schemas {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			schema.Name, schema.ID, len(schema.Fields),
			schema.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
