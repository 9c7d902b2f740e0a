package gasspect

import "strings"

// CountOps returns one count per requested mnemonic, in the same order: the
// number of times the exact pattern "<MNEMONIC>" (quoted, upper-cased)
// appears in the serialized trace text.
//
// Known limitation: this is a textual substring count, not a token count. It
// is fast, but a mnemonic that happens to appear inside other quoted data is
// counted too. CountOpsExact is the precise variant.
func CountOps(serialized []byte, mnemonics []string) []int {
	text := string(serialized)
	counts := make([]int, len(mnemonics))
	for i, m := range mnemonics {
		counts[i] = strings.Count(text, `"`+strings.ToUpper(m)+`"`)
	}
	return counts
}

// CountOpsExact returns one count per requested mnemonic by matching each
// instruction's opcode field, immune to mnemonics embedded in stack or
// memory data.
func CountOpsExact(trace *TransactionTrace, mnemonics []string) []int {
	occurrences := make(map[string]int, len(trace.StructLogs))
	for i := range trace.StructLogs {
		occurrences[trace.StructLogs[i].Op]++
	}
	counts := make([]int, len(mnemonics))
	for i, m := range mnemonics {
		counts[i] = occurrences[strings.ToUpper(m)]
	}
	return counts
}
