package models

// Node is one task in the display hierarchy.
type Node struct {
	Record   *TaskRecord
	Parent   *Node
	Children []*Node
}

// Depth returns how many ancestors the node has.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// BuildForest connects records into trees. A record becomes a child of the
// nearest preceding record (in slice order, across files) whose Indent is
// strictly smaller. Records with Indent 0, or with no smaller predecessor, are
// roots.
//
// Nodes point into records, so the slice must outlive the forest.
func BuildForest(records []TaskRecord) []*Node {
	return buildForest(records, false)
}

// BuildForestPerFile is BuildForest with nesting limited to one source file:
// the first record of each file never nests under the previous file's tasks.
func BuildForestPerFile(records []TaskRecord) []*Node {
	return buildForest(records, true)
}

func buildForest(records []TaskRecord, perFile bool) []*Node {
	var roots []*Node
	// stack holds the open ancestors with strictly increasing indent.
	var stack []*Node
	for i := range records {
		node := &Node{Record: &records[i]}
		indent := records[i].Indent

		if perFile && i > 0 && records[i].SourceFile != records[i-1].SourceFile {
			stack = stack[:0]
		}
		for len(stack) > 0 && stack[len(stack)-1].Record.Indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if indent == 0 || len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// Walk visits nodes depth-first in display order. Returning false from fn skips
// the node's children.
func Walk(roots []*Node, fn func(n *Node) bool) {
	for _, n := range roots {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}
