package glrtree

import "testing"

// buildCursorTestTree makes root -> [leafA, mid -> [leafB, leafC]], all
// leaves one byte wide with no padding, to exercise descent/ascent and
// sibling stepping with a known shape.
func buildCursorTestTree() *Tree {
	pool := NewSubtreePool()
	lang := testLang()

	leafA := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 1}, 0, 0, false, false)
	leafB := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 1}, 0, 0, false, false)
	leafC := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 1}, 0, 0, false, false)
	mid := NewNode(pool, lang, Symbol(3), []Subtree{leafB, leafC}, 0, 0)
	root := NewNode(pool, lang, Symbol(3), []Subtree{leafA, mid}, 0, 0)
	return NewTree(pool, lang, root, nil, nil)
}

func TestTreeCursorDescendAndAscend(t *testing.T) {
	tree := buildCursorTestTree()
	cur := NewTreeCursor(tree.RootNode())

	if got, want := cur.Depth(), 0; got != want {
		t.Fatalf("Depth at root = %d, want %d", got, want)
	}

	if !cur.GotoFirstChild() {
		t.Fatalf("expected GotoFirstChild to succeed at root")
	}
	if got, want := cur.Node().StartByte(), uint32(0); got != want {
		t.Fatalf("first child StartByte = %d, want %d", got, want)
	}
	if got, want := cur.Depth(), 1; got != want {
		t.Fatalf("Depth after one descent = %d, want %d", got, want)
	}

	if !cur.GotoNextSibling() {
		t.Fatalf("expected GotoNextSibling to move to mid")
	}
	mid := cur.Node()
	if got, want := mid.ChildCount(), 2; got != want {
		t.Fatalf("mid ChildCount = %d, want %d", got, want)
	}
	if cur.GotoNextSibling() {
		t.Fatalf("mid has no further sibling, GotoNextSibling should fail")
	}

	if !cur.GotoFirstChild() {
		t.Fatalf("expected GotoFirstChild into mid's children")
	}
	if got, want := cur.Depth(), 2; got != want {
		t.Fatalf("Depth two levels down = %d, want %d", got, want)
	}
	leafB := cur.Node()
	if got, want := leafB.StartByte(), uint32(1); got != want {
		t.Fatalf("leafB StartByte = %d, want %d", got, want)
	}

	if !cur.GotoParent() {
		t.Fatalf("expected GotoParent to succeed")
	}
	if !sameNode(cur.Node(), mid) {
		t.Fatalf("GotoParent should land back on mid")
	}
	if !cur.GotoParent() {
		t.Fatalf("expected GotoParent to reach the root")
	}
	if got, want := cur.Depth(), 0; got != want {
		t.Fatalf("Depth back at root = %d, want %d", got, want)
	}
	if cur.GotoParent() {
		t.Fatalf("GotoParent at the cursor's starting root should fail")
	}
}

func TestTreeCursorPrevSibling(t *testing.T) {
	tree := buildCursorTestTree()
	cur := NewTreeCursor(tree.RootNode())

	cur.GotoFirstChild() // leafA
	cur.GotoNextSibling() // mid
	if cur.GotoPrevSibling() {
		// succeeds, should land back on leafA
	} else {
		t.Fatalf("expected GotoPrevSibling from mid to succeed")
	}
	if got, want := cur.Node().StartByte(), uint32(0); got != want {
		t.Fatalf("after GotoPrevSibling, StartByte = %d, want %d", got, want)
	}
	if cur.GotoPrevSibling() {
		t.Fatalf("first child has no previous sibling, GotoPrevSibling should fail")
	}
}

func TestTreeCursorNoChildrenFails(t *testing.T) {
	tree := buildCursorTestTree()
	cur := NewTreeCursor(tree.RootNode())

	cur.GotoFirstChild() // leafA, a childless leaf
	if cur.GotoFirstChild() {
		t.Fatalf("leaf nodes have no children, GotoFirstChild should fail")
	}
}

func TestGotoFirstChildForByte(t *testing.T) {
	tree := buildCursorTestTree()
	cur := NewTreeCursor(tree.RootNode())

	descended := cur.GotoFirstChildForByte(2)
	if descended != 2 {
		t.Fatalf("descending to byte 2 should cross two levels (into mid, then leafC), got %d", descended)
	}
	if got, want := cur.Node().StartByte(), uint32(2); got != want {
		t.Fatalf("cursor should land on leafC at byte 2, got StartByte = %d, want %d", got, want)
	}
}

func TestGotoFirstChildForByteOutOfRange(t *testing.T) {
	tree := buildCursorTestTree()
	cur := NewTreeCursor(tree.RootNode())

	if got := cur.GotoFirstChildForByte(99); got != -1 {
		t.Fatalf("byte far past the tree's end should return -1, got %d", got)
	}
	if got, want := cur.Node().StartByte(), uint32(0); got != want {
		t.Fatalf("a failed descent should leave the cursor at the root, got StartByte = %d", got)
	}
}
