package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plotbot/application/plotting"
	"plotbot/domain/plot"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plotctl",
		Short: "Plot single-variable functions without the chat bot",
		Long: `plotctl runs the same parsing, sampling and rendering pipeline as the
webhook, reading the range and function from the command line.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("log2-base2", false, "make log2(x) a true base-2 logarithm")

	root.AddCommand(newRenderCmd(), newSampleCmd(), newFunctionsCmd())
	return root
}

func registryFor(cmd *cobra.Command) *plot.Registry {
	if base2, _ := cmd.Flags().GetBool("log2-base2"); base2 {
		return plot.NewRegistry(plot.WithBase2Log2())
	}
	return plot.NewRegistry()
}

// process accepts the range with or without brackets, e.g. "0:6.28" or "[0:6.28]".
func process(cmd *cobra.Command, rng, function string) (*plot.Plot, error) {
	rng = strings.TrimSuffix(strings.TrimPrefix(rng, "["), "]")
	text := "[" + rng + "]\n" + function
	return plotting.NewProcessor(registryFor(cmd)).Process(cmd.Context(), text)
}
