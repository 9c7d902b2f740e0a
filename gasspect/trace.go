package gasspect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Gnanababu/solidity-utils/common"
)

// TransactionTrace mirrors the result of a debug_traceTransaction call: the
// full, flat, per-instruction execution log of a single transaction.
type TransactionTrace struct {
	Gas         uint64     `json:"gas"`
	Failed      bool       `json:"failed"`
	ReturnValue string     `json:"returnValue"`
	StructLogs  []TracedOp `json:"structLogs"`
}

// TracedOp is one raw step of the execution log, exactly as reported by the
// node. Depth is 0 for the outermost call frame and changes by exactly one at
// call/return boundaries. Stack index 0 is the bottom of the operand stack.
type TracedOp struct {
	Pc      uint64   `json:"pc"`
	Op      string   `json:"op"`
	Gas     uint64   `json:"gas"`
	GasCost int64    `json:"gasCost"`
	Depth   int      `json:"depth"`
	Stack   []string `json:"stack"`
	Memory  []string `json:"memory"`
}

// Op is the annotated instruction built by Normalize: the original fields
// plus the reconstructed call-tree position, the recomputed net cost, and the
// optional decoded arguments/result. The raw trace is never mutated.
type Op struct {
	TraceAddress []int
	Depth        int
	Op           string
	Gas          uint64
	GasCost      int64
	Args         []string
	Res          string
}

// ParseTrace decodes a raw debug_traceTransaction response.
func ParseTrace(raw []byte) (*TransactionTrace, error) {
	var trace TransactionTrace
	if err := json.Unmarshal(raw, &trace); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace: %w", err)
	}
	return &trace, nil
}

// stackWord returns the canonical word at the given position counted from the
// top of the stack, 1-indexed (position 1 = top). ok is false when the stack
// is shorter than pos.
func (op *TracedOp) stackWord(pos int) (word string, ok bool) {
	idx := len(op.Stack) - pos
	if idx < 0 {
		return "", false
	}
	return common.CanonicalWord(op.Stack[idx]), true
}

// topWord returns the canonical top-of-stack word, or ok=false on an empty
// stack.
func (op *TracedOp) topWord() (string, bool) {
	return op.stackWord(1)
}

// memoryHex returns the instruction's memory snapshot concatenated into one
// contiguous hex byte string, without a 0x prefix.
func (op *TracedOp) memoryHex() string {
	var b strings.Builder
	for _, w := range op.Memory {
		b.WriteString(strings.TrimPrefix(strings.ToLower(w), "0x"))
	}
	return b.String()
}
