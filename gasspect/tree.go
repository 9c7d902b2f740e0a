package gasspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xlab/treeprint"
)

type callFrame struct {
	addr     []int
	netGas   int64
	ops      int
	children []*callFrame
}

// CallTree renders the reconstructed call tree as an indented text tree, one
// node per call frame, with the frame's instruction count and summed net gas.
// Frames appear in first-execution order.
func CallTree(ops []Op) string {
	frames := make(map[string]*callFrame)
	var roots []*callFrame

	for i := range ops {
		key := addrKey(ops[i].TraceAddress)
		f := frames[key]
		if f == nil {
			f = &callFrame{addr: ops[i].TraceAddress}
			frames[key] = f
			parent := frames[addrKey(parentAddr(ops[i].TraceAddress))]
			if parent != nil {
				parent.children = append(parent.children, f)
			} else {
				roots = append(roots, f)
			}
		}
		f.netGas += ops[i].GasCost
		f.ops++
	}

	tree := treeprint.New()
	tree.SetValue("call tree")
	for _, f := range roots {
		addFrame(tree, f)
	}
	return tree.String()
}

func addFrame(t treeprint.Tree, f *callFrame) {
	branch := t.AddBranch(fmt.Sprintf("%s: %d ops, net gas %d", addrKey(f.addr), f.ops, f.netGas))
	for _, child := range f.children {
		addFrame(branch, child)
	}
}

func parentAddr(addr []int) []int {
	if len(addr) == 0 {
		return nil
	}
	return addr[:len(addr)-1]
}

func addrKey(addr []int) string {
	parts := make([]string, len(addr))
	for i, a := range addr {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, "-")
}
