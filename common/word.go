package common

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// WordLen is the length of one canonical EVM stack word in hex characters
// (32 bytes, two characters per byte).
const WordLen = 64

// CanonicalWord normalizes a traced stack or memory word to 64 lowercase hex
// characters without a 0x prefix. Hardhat emits words already in this form;
// geth emits compact 0x-prefixed quantities.
func CanonicalWord(w string) string {
	w = strings.TrimPrefix(strings.ToLower(w), "0x")
	if len(w) >= WordLen {
		return w[len(w)-WordLen:]
	}
	return strings.Repeat("0", WordLen-len(w)) + w
}

// WordToAddress truncates a canonical 32-byte word to its low 20 bytes, the
// standard EVM word-to-address conversion. Returns a 0x-prefixed hex string.
func WordToAddress(word string) string {
	return "0x" + CanonicalWord(word)[24:]
}

// WordToUint64 decodes a canonical word as an unsigned integer. Words that do
// not fit in 64 bits are rejected; they cannot be meaningful byte offsets or
// lengths.
func WordToUint64(word string) (uint64, error) {
	trimmed := strings.TrimLeft(CanonicalWord(word), "0")
	if trimmed == "" {
		return 0, nil
	}
	v, err := uint256.FromHex("0x" + trimmed)
	if err != nil {
		return 0, fmt.Errorf("bad word %q: %w", word, err)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("word %q overflows uint64", word)
	}
	return v.Uint64(), nil
}
