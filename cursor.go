package glrtree

// TreeCursor walks a tree keeping an explicit stack of (node, child index)
// frames, so GotoParent/GotoNextSibling are O(1) instead of re-searching
// from the root the way Node.Parent does (spec §4.5 "TreeCursor").
type TreeCursor struct {
	stack []cursorFrame
}

type cursorFrame struct {
	node  Node
	index int // this node's index within its parent's children, -1 at the root
}

// NewTreeCursor starts a cursor positioned at root.
func NewTreeCursor(root Node) *TreeCursor {
	return &TreeCursor{stack: []cursorFrame{{node: root, index: -1}}}
}

func (c *TreeCursor) Node() Node { return c.stack[len(c.stack)-1].node }

// GotoFirstChild descends to the current node's first child, if any.
func (c *TreeCursor) GotoFirstChild() bool {
	cur := c.Node()
	if cur.ChildCount() == 0 {
		return false
	}
	c.stack = append(c.stack, cursorFrame{node: cur.Child(0), index: 0})
	return true
}

// GotoFirstChildForByte descends repeatedly, each time picking the child
// whose span contains byte, until no such child exists. Returns the index
// path length descended, or -1 if the cursor's current node doesn't
// contain byte at all.
func (c *TreeCursor) GotoFirstChildForByte(byte_ uint32) int {
	cur := c.Node()
	if byte_ < cur.StartByte() || byte_ >= cur.EndByte() {
		return -1
	}
	descended := 0
	for {
		cur = c.Node()
		found := -1
		for i := 0; i < cur.ChildCount(); i++ {
			ch := cur.Child(i)
			if ch.StartByte() <= byte_ && byte_ < ch.EndByte() {
				found = i
				break
			}
		}
		if found < 0 {
			return descended
		}
		c.stack = append(c.stack, cursorFrame{node: cur.Child(found), index: found})
		descended++
	}
}

// GotoNextSibling moves to the current node's next sibling, if any.
func (c *TreeCursor) GotoNextSibling() bool {
	n := len(c.stack)
	if n < 2 {
		return false
	}
	frame := c.stack[n-1]
	parent := c.stack[n-2].node
	if frame.index+1 >= parent.ChildCount() {
		return false
	}
	next := parent.Child(frame.index + 1)
	c.stack[n-1] = cursorFrame{node: next, index: frame.index + 1}
	return true
}

// GotoPrevSibling moves to the current node's previous sibling, if any.
func (c *TreeCursor) GotoPrevSibling() bool {
	n := len(c.stack)
	if n < 2 || c.stack[n-1].index <= 0 {
		return false
	}
	frame := c.stack[n-1]
	parent := c.stack[n-2].node
	prev := parent.Child(frame.index - 1)
	c.stack[n-1] = cursorFrame{node: prev, index: frame.index - 1}
	return true
}

// GotoParent moves up one level, if not already at the root the cursor
// was created with.
func (c *TreeCursor) GotoParent() bool {
	if len(c.stack) < 2 {
		return false
	}
	c.stack = c.stack[:len(c.stack)-1]
	return true
}

// Depth reports how many GotoFirstChild/GotoParent levels deep the
// cursor currently sits, 0 at the root.
func (c *TreeCursor) Depth() int { return len(c.stack) - 1 }
