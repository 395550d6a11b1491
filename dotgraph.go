package glrtree

import (
	"fmt"
	"io"
)

// WriteDotGraph renders tree as a Graphviz dot graph: one node per tree
// node (hidden and extra nodes included), labeled with its symbol name, byte range, error cost and
// repeat depth, with edges labeled by structural child index (spec §4.5
// "inspection tooling", adapted from the teacher's text-dump debug
// helpers into a graph format better suited to visualizing GSS-shaped
// ambiguity and reduction structure than an indented s-expression is).
func WriteDotGraph(w io.Writer, tree *Tree) error {
	if _, err := fmt.Fprintln(w, "digraph tree {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  node [shape=box, fontname=monospace];"); err != nil {
		return err
	}

	id := 0
	var walk func(n Node) (int, error)
	walk = func(n Node) (int, error) {
		my := id
		id++

		label := fmt.Sprintf("%s [%d,%d) cost=%d depth=%d",
			n.Type(), n.StartByte(), n.EndByte(), n.subtree.ErrorCost(), n.subtree.RepeatDepth())
		if n.HasChanges() {
			label += " changed"
		}
		if n.IsError() {
			label += " ERROR"
		}
		if n.IsMissing() {
			label += " MISSING"
		}
		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", my, label); err != nil {
			return 0, err
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			childID, err := walk(child)
			if err != nil {
				return 0, err
			}
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", my, childID, fmt.Sprintf("%d", i)); err != nil {
				return 0, err
			}
		}
		return my, nil
	}

	if _, err := walk(tree.RootNode()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
