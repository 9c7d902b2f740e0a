package gasspect

import (
	"fmt"
	"strconv"
	"strings"
)

// Options configures the report renderer.
type Options struct {
	// MinOpGasCost retains only instructions whose (recomputed) cost is
	// strictly greater than this threshold. Default 300.
	MinOpGasCost int64
	// Args includes the decoded argument list of each surviving instruction.
	Args bool
	// Res includes the decoded result of each surviving instruction, when one
	// was decoded.
	Res bool
}

// DefaultOptions returns the documented defaults: threshold 300, no args, no
// results.
func DefaultOptions() Options {
	return Options{MinOpGasCost: 300}
}

// FormatReport renders the annotated instructions that survive the cost
// threshold, one text line each, preserving original execution order:
//
//	<dash-joined address> - <mnemonic>[(<args>)][:<result>] = <cost>
//
// Rendering is deterministic and has no side effects.
func FormatReport(ops []Op, opts Options) []string {
	lines := make([]string, 0, len(ops))
	for i := range ops {
		if ops[i].GasCost > opts.MinOpGasCost {
			lines = append(lines, formatOp(&ops[i], opts))
		}
	}
	return lines
}

func formatOp(op *Op, opts Options) string {
	var b strings.Builder
	for i, a := range op.TraceAddress {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(a))
	}
	fmt.Fprintf(&b, " - %s", op.Op)
	if opts.Args {
		b.WriteByte('(')
		b.WriteString(strings.Join(op.Args, ","))
		b.WriteByte(')')
	}
	if opts.Res && op.Res != "" {
		b.WriteByte(':')
		b.WriteString(op.Res)
	}
	fmt.Fprintf(&b, " = %d", op.GasCost)
	return b.String()
}
