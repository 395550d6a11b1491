package glrtree

// balanceImbalanceThreshold bounds how lopsided a repeat chain's two ends
// may get before Balance rotates it back toward an even split.
const balanceImbalanceThreshold = 1

// Balance rebalances a repeat-production chain so that repeated reductions
// (e.g. `list -> list item | item`, always consing onto one end) don't
// degrade into an O(n)-deep linked list. It only rotates nodes it owns
// exclusively (refcount == 1); a shared node is left as-is rather than
// copied, since balancing is an optimization, not a correctness
// requirement (spec §4.1 "Balance", GLOSSARY "repeat_depth").
func (pool *SubtreePool) Balance(lang *Language, s Subtree) Subtree {
	if s.isInline() || s.heap.refcount.Load() != 1 || s.ChildCount() != 2 {
		return s
	}
	h := s.heap
	meta := lang.SymbolMetadata(h.symbol)
	if meta.Visible || meta.Named {
		return s
	}
	left, right := h.children[0], h.children[1]
	if left.Symbol() != h.symbol && right.Symbol() != h.symbol {
		return s
	}

	leftDepth, rightDepth := left.RepeatDepth(), right.RepeatDepth()
	if leftDepth <= rightDepth+balanceImbalanceThreshold && rightDepth <= leftDepth+balanceImbalanceThreshold {
		return s
	}

	if leftDepth > rightDepth && left.Symbol() == h.symbol && !left.isInline() && left.heap.refcount.Load() == 1 && left.ChildCount() == 2 {
		// Rotate right: (((a b) c)) -> ((a) (b c))
		a, b := left.heap.children[0], left.heap.children[1]
		c := right
		pool.freeHeap(left.heap)
		newRight := NewNode(pool, lang, h.symbol, []Subtree{b, c}, h.production, 0)
		h.children = []Subtree{a, newRight}
		pool.recomputeAggregates(lang, h)
		return s
	}
	if rightDepth > leftDepth && right.Symbol() == h.symbol && !right.isInline() && right.heap.refcount.Load() == 1 && right.ChildCount() == 2 {
		// Rotate left: ((a (b c))) -> ((a b) (c))
		b, c := right.heap.children[0], right.heap.children[1]
		a := left
		pool.freeHeap(right.heap)
		newLeft := NewNode(pool, lang, h.symbol, []Subtree{a, b}, h.production, 0)
		h.children = []Subtree{newLeft, c}
		pool.recomputeAggregates(lang, h)
		return s
	}
	return s
}
