package glrtree

// NewLeaf builds a token subtree, choosing the inline or heap representation
// transparently based on whether the fields fit (spec §4.1, §9).
func NewLeaf(pool *SubtreePool, lang *Language, symbol Symbol, padding, size Length, lookaheadBytes uint32, parseState StateID, hasExternalTokens, isKeyword bool) Subtree {
	meta := lang.SymbolMetadata(symbol)
	extra := symbol == SymbolEnd

	if fitsInline(symbol, padding, size, lookaheadBytes, hasExternalTokens) {
		return Subtree{
			symbol:         symbol,
			parseState:     uint16(parseState),
			paddingBytes:   uint8(padding.Bytes),
			paddingRow:     uint8(padding.Point.Row),
			paddingColumn:  uint8(padding.Point.Column),
			sizeBytes:      uint8(size.Bytes),
			lookaheadBytes: uint8(lookaheadBytes),
			flags: subtreeFlags{
				Visible:   meta.Visible,
				Named:     meta.Named,
				Extra:     extra,
				IsKeyword: isKeyword,
			},
		}
	}

	h := pool.allocHeap()
	h.refcount.Store(1)
	h.padding = padding
	h.size = size
	h.lookaheadBytes = lookaheadBytes
	h.symbol = symbol
	h.parseState = parseState
	h.flags = subtreeFlags{
		Visible:           meta.Visible,
		Named:             meta.Named,
		Extra:             extra,
		IsKeyword:         isKeyword,
		HasExternalTokens: hasExternalTokens,
	}
	return Subtree{heap: h}
}

// NewErrorLeaf builds an ERROR leaf for recovery (spec §4.4.1): either one
// offending code point (lex's fallback, with lookaheadChar set) or the
// whole span of a recognized token the grammar rejects (recoverVersion,
// with lookaheadChar 0). Always heap-allocated: ERROR leaves are fragile on both sides,
// and fragility has no inline representation.
func NewErrorLeaf(pool *SubtreePool, lookaheadChar int32, padding, size Length, lookaheadBytes uint32, parseState StateID) Subtree {
	h := pool.allocHeap()
	h.refcount.Store(1)
	h.padding = padding
	h.size = size
	h.lookaheadBytes = lookaheadBytes
	h.symbol = SymbolError
	h.parseState = parseState
	h.flags = subtreeFlags{Visible: true, Named: true, FragileLeft: true, FragileRight: true}
	h.lookaheadChar = lookaheadChar
	h.errorCost = costRecovery + costPerSkippedChar*size.Bytes + costPerSkippedLine*size.Point.Row
	return Subtree{heap: h}
}

// NewMissingLeaf builds a zero-size placeholder the driver inserts to
// recover from a missing-token error (spec §4.4.1 Strategy 1).
func NewMissingLeaf(pool *SubtreePool, lang *Language, symbol Symbol, padding Length, parseState StateID) Subtree {
	meta := lang.SymbolMetadata(symbol)
	h := pool.allocHeap()
	h.refcount.Store(1)
	h.padding = padding
	h.symbol = symbol
	h.parseState = parseState
	h.flags = subtreeFlags{Visible: meta.Visible, Named: meta.Named, IsMissing: true}
	return Subtree{heap: h}
}

// NewNode aggregates children into a reduced subtree (spec §4.1 "Node
// construction aggregates..."). dynamicPrecedenceBonus is the reducing
// production's own declared bonus (0 if it declares none); it is folded in
// alongside the children's own dynamic precedence.
func NewNode(pool *SubtreePool, lang *Language, symbol Symbol, children []Subtree, production ProductionID, dynamicPrecedenceBonus int32) Subtree {
	h := pool.allocHeap()
	h.refcount.Store(1)
	h.symbol = symbol
	h.production = production
	meta := lang.SymbolMetadata(symbol)
	h.flags.Visible = meta.Visible
	h.flags.Named = meta.Named
	h.children = append([]Subtree(nil), children...)

	aliasSeq := lang.AliasSequence(production)

	var pos Length
	var maxLookahead uint32
	var nodeCount uint32 = 1
	var errorCost uint32
	var dynPrecedence = dynamicPrecedenceBonus
	structuralIdx := 0

	for i, c := range children {
		if i == 0 {
			h.padding = c.Padding()
			h.size = c.Size()
		} else {
			h.size = h.size.Add(c.TotalSize())
		}

		childEnd := pos.Add(c.Padding()).Add(c.Size())
		if v := childEnd.Bytes + c.LookaheadBytes(); v > maxLookahead {
			maxLookahead = v
		}
		pos = childEnd

		nodeCount += c.NodeCount()
		if !c.Extra() {
			errorCost += c.ErrorCost()
		}
		dynPrecedence += c.DynamicPrecedence()
		if c.HasExternalTokens() {
			h.flags.HasExternalTokens = true
		}
		if c.IsError() {
			h.flags.FragileLeft = true
			h.flags.FragileRight = true
		}

		visible, named := c.Visible(), c.Named()
		if !c.Extra() {
			if structuralIdx < len(aliasSeq) && aliasSeq[structuralIdx] != 0 {
				aliasMeta := lang.SymbolMetadata(aliasSeq[structuralIdx])
				visible, named = aliasMeta.Visible, aliasMeta.Named
			}
			structuralIdx++
		}
		if visible {
			h.visibleChildCount++
		}
		if named {
			h.namedChildCount++
		}
	}

	if len(children) > 0 {
		totalBytes := h.padding.Bytes + h.size.Bytes
		if maxLookahead > totalBytes {
			h.lookaheadBytes = maxLookahead - totalBytes
		}
		h.firstLeafSymbol = children[0].LeafSymbol()
		h.firstLeafState = children[0].LeafParseState()
		h.flags.FragileLeft = h.flags.FragileLeft || children[0].FragileLeft()
		h.flags.FragileRight = h.flags.FragileRight || children[len(children)-1].FragileRight()

		if children[0].Symbol() == symbol && children[len(children)-1].Symbol() == symbol && !meta.Visible && !meta.Named {
			d := children[0].RepeatDepth()
			if r := children[len(children)-1].RepeatDepth(); r > d {
				d = r
			}
			h.repeatDepth = d + 1
		}
	}

	if symbol == SymbolError {
		errorCost += costRecovery + costPerSkippedChar*h.size.Bytes + costPerSkippedLine*h.size.Point.Row + costPerSkippedTree*h.visibleChildCount
	}
	h.errorCost = errorCost
	h.nodeCount = nodeCount
	h.dynPrecedence = dynPrecedence

	return Subtree{heap: h}
}

// NewErrorNode wraps children that couldn't be reduced any other way into a
// single ERROR subtree (spec §4.4.1 Strategy 2 "wrap the offending span").
func NewErrorNode(pool *SubtreePool, lang *Language, children []Subtree, isExtra bool) Subtree {
	s := NewNode(pool, lang, SymbolError, children, 0, 0)
	s.heap.flags.Visible = true
	s.heap.flags.Named = true
	s.heap.flags.Extra = isExtra
	return s
}

// MakeMut returns a Subtree the caller may mutate the heap fields of
// in place: if refcount is already 1 it returns s unchanged; otherwise it
// clones the heapNode (retaining each child, since both the clone and the
// original now reference them) and releases the caller's reference to the
// original (spec §4.1 "made mutable via refcount check").
func (pool *SubtreePool) MakeMut(s Subtree) Subtree {
	if s.heap == nil {
		return s
	}
	if s.heap.refcount.Load() == 1 {
		return s
	}
	cp := pool.allocHeap()
	*cp = *s.heap
	cp.refcount.Store(1)
	cp.children = append([]Subtree(nil), s.heap.children...)
	for _, c := range cp.children {
		c.Retain()
	}
	cp.externalState = append([]byte(nil), s.heap.externalState...)
	s.heap.refcount.Add(-1)
	return Subtree{heap: cp}
}

// Compare imposes a total order across subtrees (symbol first, then
// child-by-child, then count). Version condensation (spec §4.4
// "condense") does not call it.
func Compare(a, b Subtree) int {
	if a.Symbol() != b.Symbol() {
		if a.Symbol() < b.Symbol() {
			return -1
		}
		return 1
	}
	ac, bc := a.Children(), b.Children()
	n := len(ac)
	if len(bc) < n {
		n = len(bc)
	}
	for i := 0; i < n; i++ {
		if c := Compare(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	if len(ac) != len(bc) {
		if len(ac) < len(bc) {
			return -1
		}
		return 1
	}
	return 0
}

// Equal reports structural equality: same symbol, visibility, padding,
// size, and (recursively) the same children.
func Equal(a, b Subtree) bool {
	if a.Symbol() != b.Symbol() || a.Visible() != b.Visible() {
		return false
	}
	if a.Padding() != b.Padding() || a.Size() != b.Size() {
		return false
	}
	if a.IsError() && a.LookaheadChar() != b.LookaheadChar() {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}
