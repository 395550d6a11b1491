package glrtree

// Tree is a parse result: a root subtree plus the document snapshot and
// included ranges it was produced from (spec §4.5 "Tree"). Edit creates a
// new Tree sharing structure with the old one via the subtree refcounting
// scheme. Edit goes through MakeMut, so a subtree whose refcount is 1
// (such as the root of a freshly parsed tree) is edited in place: the
// receiver then sees the edited positions and has_changes as well, and
// both trees share that root.
type Tree struct {
	pool     *SubtreePool
	language *Language

	root   Subtree
	source []byte
	ranges []Range
	edits  []InputEdit
}

// NewTree wraps a completed parse.
func NewTree(pool *SubtreePool, lang *Language, root Subtree, source []byte, ranges []Range) *Tree {
	if len(ranges) == 0 {
		ranges = defaultRanges()
	}
	return &Tree{pool: pool, language: lang, root: root, source: source, ranges: ranges}
}

// RootNode returns the tree's root as a navigable Node.
func (t *Tree) RootNode() Node {
	return Node{tree: t, subtree: t.root, startByte: t.root.Padding().Bytes, startPoint: t.root.Padding().Point}
}

// Edit applies a text edit to every subtree reachable from the root,
// propagating has_changes, and records the edit on the returned Tree;
// incremental reuse against that tree reads the recorded edits to find
// the earliest edited byte (spec §4.1). GetChangedRanges does not read
// them.
func (t *Tree) Edit(ie InputEdit) *Tree {
	newRoot := t.pool.Edit(t.language, t.root, ie)
	t.root.Retain()
	return &Tree{
		pool:     t.pool,
		language: t.language,
		root:     newRoot,
		source:   t.source,
		ranges:   t.ranges,
		edits:    append(append([]InputEdit(nil), t.edits...), ie),
	}
}

// Node is a cheap, value-typed handle into a Tree: the subtree it wraps,
// plus the absolute position and alias it has in its parent's structural
// sequence (spec §4.5 "Node is {context, id, tree}" — id/tree map
// directly; context folds into startByte/startPoint/aliasSymbol here).
type Node struct {
	tree        *Tree
	subtree     Subtree
	startByte   uint32
	startPoint  Point
	aliasSymbol Symbol
}

func (n Node) IsNil() bool { return n.tree == nil }

func (n Node) Symbol() Symbol {
	if n.aliasSymbol != 0 {
		return n.aliasSymbol
	}
	return n.subtree.Symbol()
}

func (n Node) Type() string { return n.tree.language.SymbolName(n.Symbol()) }

func (n Node) IsNamed() bool {
	if n.aliasSymbol != 0 {
		return n.tree.language.SymbolMetadata(n.aliasSymbol).Named
	}
	return n.subtree.Named()
}

func (n Node) IsMissing() bool         { return n.subtree.IsMissing() }
func (n Node) IsExtra() bool           { return n.subtree.Extra() }
func (n Node) HasChanges() bool        { return n.subtree.HasChanges() }
func (n Node) IsError() bool           { return n.subtree.IsError() }
func (n Node) HasError() bool          { return n.subtree.IsError() || subtreeHasErrorDescendant(n.subtree) }
func (n Node) HasExternalTokens() bool { return n.subtree.HasExternalTokens() }

// ErrorCost returns the error cost of the node's whole subtree (spec
// §4.4.1), as aggregated when it was built: zero for a clean subtree, a
// fixed penalty for a MISSING leaf, and for an ERROR node or any node
// above one the cost accumulated from everything beneath it.
func (n Node) ErrorCost() uint32 { return n.subtree.ErrorCost() }

// LookaheadChar returns the offending code point an ERROR node carries
// (spec §4.2 "lookahead_char"), or -1 if n isn't an ERROR leaf.
func (n Node) LookaheadChar() int32 {
	if !n.subtree.IsError() {
		return -1
	}
	return n.subtree.LookaheadChar()
}

// Refcount exposes the node's underlying reference count (spec §8 prop 5
// "incremental reuse shares structure"): tests use it to confirm a node
// offered for reuse during an incremental reparse is the very same heap
// allocation the old tree still holds, not a copy.
func (n Node) Refcount() int32 { return n.subtree.Refcount() }

func subtreeHasErrorDescendant(s Subtree) bool {
	if s.IsError() || s.IsMissing() {
		return true
	}
	for _, c := range s.Children() {
		if subtreeHasErrorDescendant(c) {
			return true
		}
	}
	return false
}

func (n Node) StartByte() uint32 { return n.startByte }
func (n Node) EndByte() uint32   { return n.startByte + n.subtree.Size().Bytes }
func (n Node) StartPoint() Point { return n.startPoint }
func (n Node) EndPoint() Point   { return n.startPoint.Add(n.subtree.Size().Point) }

func (n Node) ChildCount() int { return n.subtree.ChildCount() }

// Child returns the i-th direct child (including extras), or the zero
// Node if out of range.
func (n Node) Child(i int) Node {
	children := n.subtree.Children()
	if i < 0 || i >= len(children) {
		return Node{}
	}
	aliasSeq := n.tree.language.AliasSequence(n.subtree.Production())
	structuralIdx := 0
	byteOff := n.startByte
	point := n.startPoint
	for idx, c := range children {
		// n's own start already includes its first child's padding (a
		// node's padding is its first child's), so only later children
		// add theirs.
		if idx > 0 {
			byteOff += c.Padding().Bytes
			point = point.Add(c.Padding().Point)
		}
		var alias Symbol
		if !c.Extra() {
			if structuralIdx < len(aliasSeq) {
				alias = aliasSeq[structuralIdx]
			}
			structuralIdx++
		}
		if idx == i {
			return Node{tree: n.tree, subtree: c, startByte: byteOff, startPoint: point, aliasSymbol: alias}
		}
		byteOff += c.Size().Bytes
		point = point.Add(c.Size().Point)
	}
	return Node{}
}

// NamedChildCount and NamedChild skip anonymous (unnamed) and extra
// children, the usual view scripts/editors navigate (spec GLOSSARY
// "Named child").
func (n Node) NamedChildCount() int {
	count := 0
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.IsNamed() && !c.IsExtra() {
			count++
		}
	}
	return count
}

func (n Node) NamedChild(i int) Node {
	seen := 0
	for j := 0; j < n.ChildCount(); j++ {
		c := n.Child(j)
		if c.IsNamed() && !c.IsExtra() {
			if seen == i {
				return c
			}
			seen++
		}
	}
	return Node{}
}

// ChildByFieldID returns the first direct child whose structural position
// is labeled with the given field (spec §6 field_map).
func (n Node) ChildByFieldID(field FieldID) Node {
	fieldMap := n.tree.language.FieldMap(n.subtree.Production())
	structuralIdx := 0
	for i := 0; i < n.ChildCount(); i++ {
		c := n.subtree.Children()[i]
		if c.Extra() {
			continue
		}
		for _, entry := range fieldMap {
			if int(entry.StructuralChildIndex) == structuralIdx && entry.Field == field {
				return n.Child(i)
			}
		}
		structuralIdx++
	}
	return Node{}
}

func (n Node) ChildByFieldName(name string) Node {
	for id, fname := range n.tree.language.FieldNameTable {
		if fname == name {
			return n.ChildByFieldID(FieldID(id))
		}
	}
	return Node{}
}

// Parent walks down from the tree root to find n's parent. This is a
// plain top-down search rather than a cached one: correctness first, and
// nothing in this module calls Parent from a hot loop (it's a
// navigation convenience, not part of the parse driver).
func (n Node) Parent() Node {
	if n.tree == nil {
		return Node{}
	}
	root := n.tree.RootNode()
	if root.subtree.heap == n.subtree.heap && root.startByte == n.startByte {
		return Node{}
	}
	var search func(cur Node) (Node, bool)
	search = func(cur Node) (Node, bool) {
		for i := 0; i < cur.ChildCount(); i++ {
			c := cur.Child(i)
			if sameNode(c, n) {
				return cur, true
			}
			if c.startByte <= n.startByte && n.startByte < c.EndByte() {
				if p, ok := search(c); ok {
					return p, true
				}
			}
		}
		return Node{}, false
	}
	p, _ := search(root)
	return p
}

func sameNode(a, b Node) bool {
	return a.startByte == b.startByte && a.subtree.Symbol() == b.subtree.Symbol() &&
		a.subtree.Size() == b.subtree.Size()
}

func (n Node) NextSibling() Node {
	p := n.Parent()
	if p.IsNil() {
		return Node{}
	}
	for i := 0; i < p.ChildCount(); i++ {
		if sameNode(p.Child(i), n) {
			return p.Child(i + 1)
		}
	}
	return Node{}
}

func (n Node) PrevSibling() Node {
	p := n.Parent()
	if p.IsNil() {
		return Node{}
	}
	for i := 0; i < p.ChildCount(); i++ {
		if sameNode(p.Child(i), n) {
			return p.Child(i - 1)
		}
	}
	return Node{}
}

// DescendantForByteRange returns the smallest node whose span covers
// [start, end).
func (n Node) DescendantForByteRange(start, end uint32) Node {
	cur := n
	for {
		found := Node{}
		for i := 0; i < cur.ChildCount(); i++ {
			c := cur.Child(i)
			if c.StartByte() <= start && end <= c.EndByte() {
				found = c
				break
			}
		}
		if found.IsNil() {
			return cur
		}
		cur = found
	}
}

// FirstChildForByte returns the first child whose span contains byte.
func (n Node) FirstChildForByte(byte_ uint32) Node {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.StartByte() <= byte_ && byte_ < c.EndByte() {
			return c
		}
	}
	return Node{}
}
