package glrtree

// GetChangedRanges reports the spans where newTree's content differs from
// oldTree's, by walking both trees in lock-step and only descending where
// their shapes still match (spec §4.5.1, grounded on
// original_source/src/tree_sitter/get_changed_ranges.c's paired-walk
// idea: this module attributes the identical externally-observable
// behavior — skip identical structure, recurse into matching structure,
// emit a range at the first point of divergence — without reimplementing
// get_changed_ranges.c's Iterator/IteratorDiffers state machine verbatim,
// since that file does not ship in this pack's original_source subset).
func GetChangedRanges(oldTree, newTree *Tree) []Range {
	var out []Range
	walkChangedRanges(oldTree.RootNode(), newTree.RootNode(), &out)
	return coalesceRanges(out)
}

func sameSubtreeIdentity(a, b Subtree) bool {
	if a.heap != nil || b.heap != nil {
		return a.heap == b.heap
	}
	return a == b
}

func walkChangedRanges(a, b Node, out *[]Range) {
	if sameSubtreeIdentity(a.subtree, b.subtree) && !a.HasChanges() {
		return
	}
	if a.Symbol() != b.Symbol() || a.IsNamed() != b.IsNamed() || a.ChildCount() != b.ChildCount() {
		addChangedRange(out, a, b)
		return
	}
	if a.ChildCount() == 0 {
		if a.EndByte()-a.StartByte() != b.EndByte()-b.StartByte() || b.HasChanges() {
			addChangedRange(out, a, b)
		}
		return
	}
	for i := 0; i < a.ChildCount(); i++ {
		walkChangedRanges(a.Child(i), b.Child(i), out)
	}
}

func addChangedRange(out *[]Range, a, b Node) {
	start := a.StartByte()
	startPoint := a.StartPoint()
	if b.StartByte() < start {
		start = b.StartByte()
		startPoint = b.StartPoint()
	}
	end := a.EndByte()
	endPoint := a.EndPoint()
	if b.EndByte() > end {
		end = b.EndByte()
		endPoint = b.EndPoint()
	}
	*out = append(*out, Range{StartByte: start, EndByte: end, StartPoint: startPoint, EndPoint: endPoint})
}

// coalesceRanges merges adjacent/overlapping ranges the recursive walk
// may have emitted for sibling subtrees of the same divergent span.
func coalesceRanges(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.StartByte <= last.EndByte {
			if r.EndByte > last.EndByte {
				last.EndByte = r.EndByte
				last.EndPoint = r.EndPoint
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// ts_range_array_get_changed_ranges computes the symmetric difference
// between two included-range arrays: the spans present in exactly one of
// the two (spec §4.5.1, used when SetIncludedRanges changes which parts
// of the document are in-language and therefore need reparsing even
// without a text edit). A sweep over both arrays' start/end boundaries,
// emitting a difference range exactly when the sweep crosses into or out
// of being "inside" one array but not the other. Ported directly from
// original_source/src/tree_sitter/get_changed_ranges.c's
// ts_range_array_get_changed_ranges (its add-then-merge-adjacent
// TSRangeArray output is this function's coalesceRanges pass).
func symmetricDifferenceRanges(oldRanges, newRanges []Range) []Range {
	var out []Range
	oldIndex, newIndex := 0, 0
	var current Length
	inOld, inNew := false, false

	for oldIndex < len(oldRanges) || newIndex < len(newRanges) {
		nextOld := LengthMax
		if inOld {
			nextOld = Length{Bytes: oldRanges[oldIndex].EndByte, Point: oldRanges[oldIndex].EndPoint}
		} else if oldIndex < len(oldRanges) {
			nextOld = Length{Bytes: oldRanges[oldIndex].StartByte, Point: oldRanges[oldIndex].StartPoint}
		}

		nextNew := LengthMax
		if inNew {
			nextNew = Length{Bytes: newRanges[newIndex].EndByte, Point: newRanges[newIndex].EndPoint}
		} else if newIndex < len(newRanges) {
			nextNew = Length{Bytes: newRanges[newIndex].StartByte, Point: newRanges[newIndex].StartPoint}
		}

		switch {
		case nextOld.Bytes < nextNew.Bytes:
			if inOld != inNew {
				out = append(out, rangeBetween(current, nextOld))
			}
			if inOld {
				oldIndex++
			}
			current = nextOld
			inOld = !inOld

		case nextNew.Bytes < nextOld.Bytes:
			if inOld != inNew {
				out = append(out, rangeBetween(current, nextNew))
			}
			if inNew {
				newIndex++
			}
			current = nextNew
			inNew = !inNew

		default:
			if inOld != inNew {
				out = append(out, rangeBetween(current, nextNew))
			}
			if inOld {
				oldIndex++
			}
			if inNew {
				newIndex++
			}
			inOld = !inOld
			inNew = !inNew
			current = nextNew
		}
	}
	return coalesceRanges(out)
}

func rangeBetween(start, end Length) Range {
	return Range{StartByte: start.Bytes, EndByte: end.Bytes, StartPoint: start.Point, EndPoint: end.Point}
}
