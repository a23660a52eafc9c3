package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the supported function literals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range registryFor(cmd).Functions() {
				fmt.Fprintln(cmd.OutOrStdout(), f.Literal)
			}
			return nil
		},
	}
}
