package glrtree

// reuseFrame is one entry of the pre-order walk over an old tree's nodes,
// tracking whether an ancestor already carries has_changes (so its whole
// subtree is excluded from reuse without re-checking each descendant).
type reuseFrame struct {
	node       Node
	underDirty bool
}

// reuseCursor incrementally walks an old tree's nodes in pre-order,
// caching every node starting at a given byte so the driver can offer
// them as reuse candidates for the current lookahead (spec §4.5.2
// "Incremental reparse").
//
// Adapted from the teacher's incremental.go reuseCursor: that version
// compared old/new source bytes directly (`nodeBytesEqual`) to decide
// whether a dirty node had actually become clean again. This one instead
// trusts has_changes as Edit already set it correctly across the whole
// subtree (spec §4.1), so it skips nodes that have has_changes set,
// contain an error or are empty, plus any node under a changed ancestor
// that ends at or before the earliest edit's start byte; the
// byte-comparison fallback isn't needed once Edit is implemented.
type reuseCursor struct {
	tree      *Tree
	minEditAt uint32
	hasEdits  bool
	sourceLen uint32

	stack []reuseFrame
	next  Node
	hasNext bool

	cachedStart      uint32
	cachedStartValid bool
	cached           []Node
}

func newReuseCursor(oldTree *Tree, lexer *Lexer) *reuseCursor {
	if oldTree == nil {
		return nil
	}
	c := &reuseCursor{tree: oldTree}
	if len(oldTree.edits) > 0 {
		c.hasEdits = true
		c.minEditAt = oldTree.edits[0].StartByte
		for _, e := range oldTree.edits[1:] {
			if e.StartByte < c.minEditAt {
				c.minEditAt = e.StartByte
			}
		}
	}
	c.stack = []reuseFrame{{node: oldTree.RootNode()}}
	return c
}

// candidates returns every old-tree node starting exactly at start,
// advancing the underlying walk past anything that starts earlier.
func (c *reuseCursor) candidates(start uint32) []Node {
	if c == nil {
		return nil
	}
	if c.cachedStartValid {
		if start == c.cachedStart {
			return c.cached
		}
		if start < c.cachedStart {
			return nil
		}
	}

	c.cached = c.cached[:0]
	c.cachedStart = start
	c.cachedStartValid = true

	for {
		n, ok := c.peek()
		if !ok {
			return c.cached
		}
		if n.StartByte() < start {
			c.pop()
			continue
		}
		if n.StartByte() > start {
			return c.cached
		}
		for {
			n, ok = c.peek()
			if !ok || n.StartByte() != start {
				return c.cached
			}
			c.cached = append(c.cached, n)
			c.pop()
		}
	}
}

func (c *reuseCursor) peek() (Node, bool) {
	if c.hasNext {
		return c.next, true
	}
	n, ok := c.advance()
	c.next, c.hasNext = n, ok
	return n, ok
}

func (c *reuseCursor) pop() { c.hasNext = false }

func (c *reuseCursor) advance() (Node, bool) {
	for len(c.stack) > 0 {
		last := len(c.stack) - 1
		frame := c.stack[last]
		c.stack = c.stack[:last]
		cur := frame.node

		dirty := cur.HasChanges()
		underDirty := frame.underDirty || dirty

		for i := cur.ChildCount() - 1; i >= 0; i-- {
			c.stack = append(c.stack, reuseFrame{node: cur.Child(i), underDirty: underDirty})
		}

		if underDirty && c.hasEdits && cur.EndByte() <= c.minEditAt {
			continue
		}
		if dirty || cur.HasError() || cur.EndByte() <= cur.StartByte() {
			continue
		}
		return cur, true
	}
	return Node{}, false
}

// tryReuse offers every candidate old-tree node starting at the lexer's
// current byte to reuseTargetState; the first one whose target state the
// parse table accepts is shifted directly onto the stack as a single
// subtree, skipping the lexer and driver entirely for its whole span
// (spec §4.5.2).
func (p *Parser) tryReuse(lang *Language, stack *Stack, v int, reuse *reuseCursor, lookaheadByte uint32) bool {
	if reuse == nil {
		return false
	}
	candidates := reuse.candidates(lookaheadByte)
	if len(candidates) == 0 {
		return false
	}
	state := stack.State(v)
	for _, n := range candidates {
		target, ok := reuseTargetState(lang, state, n)
		if !ok {
			continue
		}
		n.subtree.Retain()
		stack.Push(v, target, n.subtree, nil)
		return true
	}
	return false
}

func reuseTargetState(lang *Language, state StateID, n Node) (StateID, bool) {
	if n.ChildCount() == 0 {
		entry := lang.ParseTable.Action(state, n.subtree.Symbol())
		if entry == nil || len(entry.Actions) == 0 {
			return 0, false
		}
		if entry.Actions[0].Type == ActionShift && entry.Actions[0].Extra {
			return state, true
		}
		for _, act := range entry.Actions {
			if act.Type == ActionShift {
				return act.State, true
			}
		}
		return 0, false
	}
	gotoState, ok := lang.ParseTable.Goto(state, n.subtree.Symbol())
	if !ok || gotoState != n.subtree.ParseState() {
		return 0, false
	}
	return gotoState, true
}
