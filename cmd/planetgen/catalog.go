package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the crust material catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tNAME\tCLASS\tFORMULA\tDENSITY g/cm³")
			for _, m := range cat.Materials() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n", m.Symbol, m.Name, m.Class, m.Formula, m.Density)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "material catalog YAML (default: bundled)")
	return cmd
}
