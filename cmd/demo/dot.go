package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDotCmd() *cobra.Command {
	var current string

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Print the transition table as Graphviz DOT",
		Example: `  demo dot | dot -Tsvg > traffic.svg
  demo dot --state green`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd)
			if err != nil {
				return err
			}
			if current == "" {
				current = table.Initial()
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), table.DOT(current))
			return err
		},
	}

	cmd.Flags().StringVar(&current, "state", "", "state to highlight (default: the initial state)")
	return cmd
}
