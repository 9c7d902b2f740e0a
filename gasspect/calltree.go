package gasspect

// CallTreeAddresses reconstructs the call-tree position of every traced
// instruction from depth transitions alone, the same addressing scheme chain
// debuggers use for call traces: the root frame is 0, its first nested call
// is 0-0, the second 0-1, and so on.
//
// The path carries one trailing placeholder entry reserved for the next child
// frame; an instruction's address is the path without that placeholder. Depth
// changes by exactly one at call/return boundaries in well-formed traces, so
// a transition deeper opens a child (bumping the sibling counter) and a
// transition shallower closes one.
func CallTreeAddresses(logs []TracedOp) [][]int {
	path := []int{0, -1}
	addrs := make([][]int, len(logs))
	for i := range logs {
		addr := make([]int, len(path)-1)
		copy(addr, path)
		addrs[i] = addr

		switch {
		case logs[i].Depth+2 > len(path):
			path[len(path)-1]++
			path = append(path, -1)
		case logs[i].Depth+2 < len(path):
			path = path[:len(path)-1]
		}
	}
	return addrs
}
