package glrtree

import "testing"

func TestEditPureShiftLeavesContentAlone(t *testing.T) {
	pool := NewSubtreePool()
	lang := testLang()

	leaf := NewLeaf(pool, lang, Symbol(1), Length{Bytes: 2}, Length{Bytes: 3}, 0, 0, false, false)

	// Insert 4 bytes entirely before this leaf (before its padding even
	// starts): a pure shift, spec §4.1 step 2.
	edited := pool.Edit(lang, leaf, InputEdit{StartByte: 0, OldEndByte: 0, NewEndByte: 4})

	if got, want := edited.Padding().Bytes, uint32(6); got != want {
		t.Fatalf("Padding().Bytes = %d, want %d (shifted by inserted length)", got, want)
	}
	if got, want := edited.Size().Bytes, uint32(3); got != want {
		t.Fatalf("Size().Bytes = %d, want %d (unchanged by a pure shift)", got, want)
	}
	if !edited.HasChanges() {
		t.Fatalf("a subtree actually touched by an edit should report HasChanges")
	}
}

func TestEditOutOfRangeIsNoOp(t *testing.T) {
	pool := NewSubtreePool()
	lang := testLang()

	leaf := NewLeaf(pool, lang, Symbol(1), Length{Bytes: 2}, Length{Bytes: 3}, 0, 0, false, false)

	edited := pool.Edit(lang, leaf, InputEdit{StartByte: 100, OldEndByte: 100, NewEndByte: 104})

	if edited != leaf {
		t.Fatalf("an edit entirely beyond the subtree should return it unchanged")
	}
}

func TestEditContentResizePropagatesToParent(t *testing.T) {
	pool := NewSubtreePool()
	lang := testLang()

	a := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 2}, 0, 0, false, false)
	b := NewLeaf(pool, lang, Symbol(1), LengthZero, Length{Bytes: 2}, 0, 0, false, false)
	node := NewNode(pool, lang, Symbol(3), []Subtree{a, b}, 0, 0)

	// Grow the first child's content from 2 bytes to 5.
	edited := pool.Edit(lang, node, InputEdit{StartByte: 1, OldEndByte: 2, NewEndByte: 5})

	if got, want := edited.Size().Bytes, uint32(7); got != want {
		t.Fatalf("parent Size().Bytes = %d, want %d (2 grown-to-5 + 2 untouched)", got, want)
	}
	if !edited.HasChanges() {
		t.Fatalf("parent should report HasChanges after a child resize")
	}
}
