package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plotbot/infrastructure/rendering"
)

func newRenderCmd() *cobra.Command {
	var (
		output string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:     "render <range> <function>",
		Short:   "Render a function to a PNG file",
		Example: `  plotctl render 0:6.28 'sin(x)' -o sin.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := process(cmd, args[0], args[1])
			if err != nil {
				return err
			}

			png, err := rendering.NewChartRenderer(width, height).Render(cmd.Context(), p)
			if err != nil {
				return err
			}
			if output == "" {
				output = p.Function.Slug() + ".png"
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(png))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <function>.png)")
	cmd.Flags().IntVar(&width, "width", 640, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 480, "image height in pixels")
	return cmd
}
