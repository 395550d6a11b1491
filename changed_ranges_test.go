package glrtree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSymmetricDifferenceRangesNonOverlapping(t *testing.T) {
	old := []Range{{StartByte: 0, EndByte: 5}}
	new_ := []Range{{StartByte: 10, EndByte: 15}}

	got := symmetricDifferenceRanges(old, new_)
	want := []Range{{StartByte: 0, EndByte: 5}, {StartByte: 10, EndByte: 15}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("symmetricDifferenceRanges mismatch (-want +got):\n%s", diff)
	}
}

func TestSymmetricDifferenceRangesOverlapExcludesSharedSpan(t *testing.T) {
	old := []Range{{StartByte: 0, EndByte: 10}}
	new_ := []Range{{StartByte: 5, EndByte: 15}}

	got := symmetricDifferenceRanges(old, new_)
	want := []Range{{StartByte: 0, EndByte: 5}, {StartByte: 10, EndByte: 15}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("symmetricDifferenceRanges mismatch (-want +got):\n%s", diff)
	}
}

func TestSymmetricDifferenceRangesIdenticalIsEmpty(t *testing.T) {
	r := []Range{{StartByte: 0, EndByte: 10}}

	got := symmetricDifferenceRanges(r, r)
	if len(got) != 0 {
		t.Fatalf("identical range lists should have an empty symmetric difference, got %+v", got)
	}
}

func TestCoalesceRangesMergesAdjacent(t *testing.T) {
	in := []Range{{StartByte: 0, EndByte: 5}, {StartByte: 5, EndByte: 10}, {StartByte: 20, EndByte: 25}}
	got := coalesceRanges(in)
	want := []Range{{StartByte: 0, EndByte: 10}, {StartByte: 20, EndByte: 25}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("coalesceRanges mismatch (-want +got):\n%s", diff)
	}
}

func TestGetChangedRangesDetectsEditedLeaf(t *testing.T) {
	pool := NewSubtreePool()
	lang := testLang()

	a := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 2}, 0, 0, false, false)
	b := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 2}, 0, 0, false, false)
	root := NewNode(pool, lang, Symbol(3), []Subtree{a, b}, 0, 0)
	oldTree := NewTree(pool, lang, root, nil, nil)

	edited := pool.Edit(lang, root, InputEdit{StartByte: 1, OldEndByte: 2, NewEndByte: 4})
	newTree := NewTree(pool, lang, edited, nil, nil)

	ranges := GetChangedRanges(oldTree, newTree)
	if len(ranges) == 0 {
		t.Fatalf("expected at least one changed range after editing the first child")
	}
	if ranges[0].StartByte > 2 {
		t.Fatalf("changed range should start at or before the edited child's end, got %+v", ranges[0])
	}
}
