package gasspect

import (
	"errors"
	"fmt"
)

// ErrNoTrace is returned when a node answers a trace request with an empty
// result, typically for an unknown transaction hash.
var ErrNoTrace = errors.New("node returned no trace for transaction")

// MalformedTraceError reports a normalization rule that needed a stack or
// memory element the trace does not contain. It carries enough context to
// diagnose the offending instruction.
type MalformedTraceError struct {
	Index int    // instruction index within the trace
	Op    string // opcode mnemonic at that index
	Field string // "stack" or "memory"
	Need  int    // required position (stack) or byte bound (memory)
	Have  int    // actual length available
}

func (e *MalformedTraceError) Error() string {
	return fmt.Sprintf("malformed trace: instruction %d (%s): %s lookup needs %d, have %d",
		e.Index, e.Op, e.Field, e.Need, e.Have)
}
