package gasspect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageTraceFixture() *TransactionTrace {
	slot := word("2a")
	value := word("1f")
	return &TransactionTrace{
		Gas: 60000,
		StructLogs: []TracedOp{
			{Op: "PUSH1", Gas: 80000, GasCost: 3, Depth: 0},
			{Op: "SSTORE", Gas: 79997, GasCost: 22100, Depth: 0, Stack: []string{value, slot}},
			{Op: "SLOAD", Gas: 57897, GasCost: 100, Depth: 0, Stack: []string{slot}},
			{Op: "SSTORE", Gas: 57797, GasCost: 100, Depth: 0, Stack: []string{value, slot}},
			{Op: "SLOAD", Gas: 57697, GasCost: 100, Depth: 0, Stack: []string{slot}},
			{Op: "STOP", Gas: 57597, GasCost: 0, Depth: 0, Stack: []string{value}},
		},
	}
}

func TestCountOps(t *testing.T) {
	raw, err := json.Marshal(storageTraceFixture())
	require.NoError(t, err)

	counts := CountOps(raw, []string{"STATICCALL", "CALL", "SSTORE", "SLOAD"})
	assert.Equal(t, []int{0, 0, 2, 2}, counts)
}

func TestCountOpsLowercaseRequest(t *testing.T) {
	raw, err := json.Marshal(storageTraceFixture())
	require.NoError(t, err)

	counts := CountOps(raw, []string{"sstore", "sload"})
	assert.Equal(t, []int{2, 2}, counts)
}

func TestCountOpsSubstringOvercount(t *testing.T) {
	// the substring counter also matches mnemonics inside unrelated quoted
	// data - a documented limitation, and exactly what the exact counter
	// does not do
	trace := storageTraceFixture()
	trace.ReturnValue = "SSTORE"
	raw, err := json.Marshal(trace)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, CountOps(raw, []string{"SSTORE"}))
	assert.Equal(t, []int{2}, CountOpsExact(trace, []string{"SSTORE"}))
}

func TestCountOpsExact(t *testing.T) {
	counts := CountOpsExact(storageTraceFixture(), []string{"STATICCALL", "CALL", "SSTORE", "SLOAD", "STOP"})
	assert.Equal(t, []int{0, 0, 2, 2, 1}, counts)
}
