package glrtree

// InputEdit describes one text edit in absolute document coordinates, the
// public shape callers construct (spec §6 "ts_input_edit equivalent").
type InputEdit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32

	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

func (e InputEdit) start() Length   { return Length{Bytes: e.StartByte, Point: e.StartPoint} }
func (e InputEdit) oldEnd() Length  { return Length{Bytes: e.OldEndByte, Point: e.OldEndPoint} }
func (e InputEdit) newEnd() Length  { return Length{Bytes: e.NewEndByte, Point: e.NewEndPoint} }

// edit is InputEdit translated into lengths relative to whatever subtree it
// is currently being applied to (spec §4.1 step 7 "translating the edit
// into the child's local coordinate space").
type edit struct {
	start, oldEnd, newEnd Length
}

func (e edit) isEmpty() bool {
	return e.start == e.oldEnd && e.oldEnd == e.newEnd
}

// Edit propagates a text edit through a subtree, following the seven steps
// in order: out-of-range no-op, pure shift (edit entirely before padding),
// edit touching padding, pure insertion at the padding/content boundary,
// edit touching content, then recursion into children with has_changes set
// (spec §4.1). Node padding/size are not patched directly; instead this
// recurses into children first and re-derives the parent's own
// padding/size/error_cost/etc. from them afterward, which is equivalent to
// applying the same six steps to the parent and avoids keeping two
// divergent code paths in sync.
func (pool *SubtreePool) Edit(lang *Language, s Subtree, ie InputEdit) Subtree {
	return pool.editInternal(lang, s, edit{ie.start(), ie.oldEnd(), ie.newEnd()})
}

func (pool *SubtreePool) editInternal(lang *Language, s Subtree, e edit) Subtree {
	padding := s.Padding()
	size := s.Size()
	total := padding.Bytes + size.Bytes + s.LookaheadBytes()

	if e.start.Bytes > total {
		return s // step 1: edit lies entirely beyond this subtree
	}
	if e.isEmpty() {
		return s // boundary rule: a truly empty edit never sets has_changes
	}

	if s.ChildCount() == 0 {
		return pool.editLeaf(s, e)
	}

	s = pool.MakeMut(s)
	h := s.heap
	pool.editChildrenInPlace(lang, h, e)
	pool.recomputeAggregates(lang, h)
	h.flags.HasChanges = true
	return s
}

func (pool *SubtreePool) editLeaf(s Subtree, e edit) Subtree {
	padding := s.Padding()
	size := s.Size()

	var newPadding, newSize Length
	switch {
	case e.oldEnd.Bytes <= padding.Bytes:
		// step 2: edit entirely within or before padding; shift it.
		newPadding = e.newEnd.Add(subClamped(padding, e.oldEnd))
		newSize = size
	case e.start.Bytes < padding.Bytes:
		// step 3: edit starts in padding, ends in content.
		newSize = subClamped(size, subClamped(e.oldEnd, padding))
		newPadding = e.newEnd
	case e.start.Bytes == padding.Bytes && e.oldEnd == e.start:
		// step 4: pure insertion exactly at the padding/content boundary.
		newPadding = e.newEnd
		newSize = size
	default:
		// step 5: edit touches content; size grows/shrinks, padding is untouched.
		grown := subClamped(e.newEnd, padding)
		shrunk := subClamped(size, subClamped(e.oldEnd, padding))
		newSize = shrunk.Add(grown)
		newPadding = padding
	}

	s = pool.MakeMut(s)
	if s.isInline() {
		if fitsInline(s.Symbol(), newPadding, newSize, s.LookaheadBytes(), s.HasExternalTokens()) {
			s.paddingBytes = uint8(newPadding.Bytes)
			s.paddingRow = uint8(newPadding.Point.Row)
			s.paddingColumn = uint8(newPadding.Point.Column)
			s.sizeBytes = uint8(newSize.Bytes)
			s.flags.HasChanges = true
			return s
		}
		// promote to heap: inline leaves never carry enough metadata loss
		// risk here since new_leaf recomputes metadata from the symbol.
		h := &heapNode{}
		h.refcount.Store(1)
		h.symbol = s.Symbol()
		h.parseState = s.ParseState()
		h.flags = s.flags
		h.padding = newPadding
		h.size = newSize
		h.lookaheadBytes = s.LookaheadBytes()
		h.flags.HasChanges = true
		return Subtree{heap: h}
	}

	s.heap.padding = newPadding
	s.heap.size = newSize
	s.heap.flags.HasChanges = true
	return s
}

// editChildrenInPlace translates e into each child's local coordinate
// space and replaces h.children with the edited results. The edit's
// insertion (new content) is attributed to the first child it touches;
// children entirely after that point see a shrink-only (or no-op) edit, so
// the growth is never double counted (spec §4.1 step 7).
func (pool *SubtreePool) editChildrenInPlace(lang *Language, h *heapNode, e edit) {
	var pos Length
	attributed := false

	for i, c := range h.children {
		total := c.TotalSize()
		start := pos
		end := pos.Add(total)
		pos = end

		touches := e.start.Bytes < end.Bytes && e.oldEnd.Bytes > start.Bytes
		boundaryInsert := !attributed && !touches && e.start.Bytes == start.Bytes && e.oldEnd == e.start

		switch {
		case touches:
			localStart := subClamped(maxLength(e.start, start), start)
			localOldEnd := subClamped(minLength(e.oldEnd, end), start)
			var localNewEnd Length
			if !attributed {
				localNewEnd = subClamped(e.newEnd, start)
			} else {
				localNewEnd = localStart
			}
			h.children[i] = pool.editInternal(lang, c, edit{localStart, localOldEnd, localNewEnd})
			if e.oldEnd.Bytes <= end.Bytes {
				attributed = true
			}
		case boundaryInsert:
			localStart := subClamped(start, start)
			h.children[i] = pool.editInternal(lang, c, edit{localStart, localStart, e.newEnd.Sub(e.start).Add(localStart)})
			attributed = true
		case attributed && start.Bytes < e.oldEnd.Bytes:
			localOldEnd := subClamped(minLength(e.oldEnd, end), start)
			h.children[i] = pool.editInternal(lang, c, edit{LengthZero, localOldEnd, LengthZero})
		default:
			// entirely untouched: true no-op, does not mark has_changes.
		}
	}
}

func minLength(a, b Length) Length {
	if a.Bytes < b.Bytes {
		return a
	}
	return b
}

func maxLength(a, b Length) Length {
	if a.Bytes > b.Bytes {
		return a
	}
	return b
}

// recomputeAggregates re-derives h's padding/size/error_cost/node_count/etc.
// from its (already edited) children, equivalent to rebuilding it via
// NewNode but without allocating a new heapNode or touching refcounts
// (spec §4.1, same formulas as NewNode).
func (pool *SubtreePool) recomputeAggregates(lang *Language, h *heapNode) {
	children := h.children
	if len(children) == 0 {
		return
	}
	meta := lang.SymbolMetadata(h.symbol)
	aliasSeq := lang.AliasSequence(h.production)

	var pos Length
	var maxLookahead uint32
	var nodeCount uint32 = 1
	var errorCost uint32
	var visibleChildCount, namedChildCount uint32
	hasExternalTokens := false
	fragileLeft, fragileRight := false, false
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
		if c.HasExternalTokens() {
			hasExternalTokens = true
		}
		if c.IsError() {
			fragileLeft, fragileRight = true, true
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
			visibleChildCount++
		}
		if named {
			namedChildCount++
		}
	}

	totalBytes := h.padding.Bytes + h.size.Bytes
	h.lookaheadBytes = 0
	if maxLookahead > totalBytes {
		h.lookaheadBytes = maxLookahead - totalBytes
	}
	h.firstLeafSymbol = children[0].LeafSymbol()
	h.firstLeafState = children[0].LeafParseState()
	h.flags.FragileLeft = fragileLeft || children[0].FragileLeft()
	h.flags.FragileRight = fragileRight || children[len(children)-1].FragileRight()
	h.flags.HasExternalTokens = hasExternalTokens
	h.visibleChildCount = visibleChildCount
	h.namedChildCount = namedChildCount
	h.nodeCount = nodeCount

	h.repeatDepth = 0
	if children[0].Symbol() == h.symbol && children[len(children)-1].Symbol() == h.symbol && !meta.Visible && !meta.Named {
		d := children[0].RepeatDepth()
		if r := children[len(children)-1].RepeatDepth(); r > d {
			d = r
		}
		h.repeatDepth = d + 1
	}

	if h.symbol == SymbolError {
		errorCost += costRecovery + costPerSkippedChar*h.size.Bytes + costPerSkippedLine*h.size.Point.Row + costPerSkippedTree*visibleChildCount
	}
	h.errorCost = errorCost
}
