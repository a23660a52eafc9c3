package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"plotbot/domain/plot"
)

type sampleOutput struct {
	Function string     `json:"function"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
	XS       []*float64 `json:"xs"`
	YS       []*float64 `json:"ys"`
}

func newSampleCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sample <range> <function>",
		Short: "Print the sampled points",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := process(cmd, args[0], args[1])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), p)
			case "csv":
				return writeCSV(cmd.OutOrStdout(), p)
			default:
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	return cmd
}

func writeJSON(w io.Writer, p *plot.Plot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sampleOutput{
		Function: p.Function.Literal,
		Min:      p.Range.Min,
		Max:      p.Range.Max,
		XS:       finiteOrNil(p.XS),
		YS:       finiteOrNil(p.YS),
	})
}

// writeCSV writes one x,y row per sample; non-finite values are written as
// NaN, +Inf or -Inf.
func writeCSV(w io.Writer, p *plot.Plot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for i := range p.XS {
		row := []string{
			strconv.FormatFloat(p.XS[i], 'g', -1, 64),
			strconv.FormatFloat(p.YS[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func finiteOrNil(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		if math.IsNaN(vs[i]) || math.IsInf(vs[i], 0) {
			continue
		}
		v := vs[i]
		out[i] = &v
	}
	return out
}
