package gasspect

import (
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// chartTopN caps the number of bars so large traces stay readable.
const chartTopN = 30

// GasChart writes an HTML bar chart of aggregate net gas by (relabeled)
// mnemonic, heaviest first.
func GasChart(w io.Writer, ops []Op, title string) error {
	totals := make(map[string]int64)
	for i := range ops {
		totals[ops[i].Op] += ops[i].GasCost
	}

	type opGas struct {
		op  string
		gas int64
	}
	sorted := make([]opGas, 0, len(totals))
	for op, gas := range totals {
		sorted = append(sorted, opGas{op, gas})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].gas != sorted[j].gas {
			return sorted[i].gas > sorted[j].gas
		}
		return sorted[i].op < sorted[j].op
	})
	if len(sorted) > chartTopN {
		sorted = sorted[:chartTopN]
	}

	names := make([]string, len(sorted))
	values := make([]opts.BarData, len(sorted))
	for i, og := range sorted {
		names[i] = og.op
		values[i] = opts.BarData{Value: og.gas}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "aggregate net gas by opcode",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).AddSeries("net gas", values)
	return bar.Render(w)
}
