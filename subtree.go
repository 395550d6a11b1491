package glrtree

import "sync/atomic"

// subtreeFlags are the bits every subtree representation carries (spec §3
// "Subtree is a tagged union of two representations").
type subtreeFlags struct {
	Visible           bool
	Named             bool
	Extra             bool
	HasChanges        bool
	IsMissing         bool
	IsKeyword         bool
	FragileLeft       bool
	FragileRight      bool
	HasExternalTokens bool
}

// heapNode is the arena-allocated, reference-counted representation used
// whenever a leaf doesn't fit inline, or for every node with children
// (spec §3 "Heap node").
type heapNode struct {
	refcount atomic.Int32

	padding        Length
	size           Length
	lookaheadBytes uint32
	errorCost      uint32
	symbol         Symbol
	parseState     StateID
	flags          subtreeFlags

	// Populated when childCount() > 0.
	children          []Subtree
	visibleChildCount uint32
	namedChildCount   uint32
	nodeCount         uint32
	repeatDepth       uint32
	dynPrecedence     int32
	production        ProductionID
	firstLeafSymbol   Symbol
	firstLeafState    StateID

	// Populated when childCount() == 0 && HasExternalTokens.
	externalState []byte

	// Populated when childCount() == 0 && symbol == SymbolError.
	lookaheadChar int32
	// Reported by IsErrorRepeat (spec §3 invariant 2, §4.4.1). Nothing in
	// this package sets it, so it is always false.
	isErrorRepeat bool
}

func (h *heapNode) childCount() int { return len(h.children) }

// Subtree is a tagged value: either a packed inline leaf descriptor or a
// pointer to a heapNode. Both must be behaviorally indistinguishable for
// every operation except allocation (spec §9 "Tagged inline-vs-heap
// subtree").
type Subtree struct {
	heap *heapNode

	// Valid only when heap == nil.
	symbol         Symbol
	parseState     uint16
	paddingBytes   uint8
	paddingRow     uint8
	paddingColumn  uint8
	sizeBytes      uint8
	lookaheadBytes uint8
	flags          subtreeFlags
}

// NilSubtree is the zero value, used as an explicit "no subtree" marker
// (the union's NULL_SUBTREE).
var NilSubtree = Subtree{}

func (s Subtree) IsNil() bool {
	return s.heap == nil && s.symbol == 0 && !s.flags.Visible && !s.flags.Named &&
		s.paddingBytes == 0 && s.sizeBytes == 0
}

func (s Subtree) isInline() bool { return s.heap == nil }

// --- uniform accessors (spec §9: both branches must answer identically) ---

func (s Subtree) Symbol() Symbol {
	if s.isInline() {
		return s.symbol
	}
	return s.heap.symbol
}

func (s Subtree) Visible() bool {
	if s.isInline() {
		return s.flags.Visible
	}
	return s.heap.flags.Visible
}

func (s Subtree) Named() bool {
	if s.isInline() {
		return s.flags.Named
	}
	return s.heap.flags.Named
}

func (s Subtree) Extra() bool {
	if s.isInline() {
		return s.flags.Extra
	}
	return s.heap.flags.Extra
}

func (s Subtree) HasChanges() bool {
	if s.isInline() {
		return s.flags.HasChanges
	}
	return s.heap.flags.HasChanges
}

func (s Subtree) IsMissing() bool {
	if s.isInline() {
		return s.flags.IsMissing
	}
	return s.heap.flags.IsMissing
}

func (s Subtree) IsKeyword() bool {
	if s.isInline() {
		return s.flags.IsKeyword
	}
	return s.heap.flags.IsKeyword
}

func (s Subtree) ParseState() StateID {
	if s.isInline() {
		return StateID(s.parseState)
	}
	return s.heap.parseState
}

func (s Subtree) LookaheadBytes() uint32 {
	if s.isInline() {
		return uint32(s.lookaheadBytes)
	}
	return s.heap.lookaheadBytes
}

func (s Subtree) Padding() Length {
	if s.isInline() {
		return Length{Bytes: uint32(s.paddingBytes), Point: Point{Row: uint32(s.paddingRow), Column: uint32(s.paddingColumn)}}
	}
	return s.heap.padding
}

func (s Subtree) Size() Length {
	if s.isInline() {
		return Length{Bytes: uint32(s.sizeBytes), Point: Point{Row: 0, Column: uint32(s.sizeBytes)}}
	}
	return s.heap.size
}

func (s Subtree) TotalSize() Length {
	return s.Padding().Add(s.Size())
}

func (s Subtree) TotalBytes() uint32 {
	return s.TotalSize().Bytes
}

func (s Subtree) ChildCount() int {
	if s.isInline() {
		return 0
	}
	return s.heap.childCount()
}

func (s Subtree) Children() []Subtree {
	if s.isInline() {
		return nil
	}
	return s.heap.children
}

func (s Subtree) RepeatDepth() uint32 {
	if s.isInline() {
		return 0
	}
	return s.heap.repeatDepth
}

func (s Subtree) NodeCount() uint32 {
	if s.isInline() || s.heap.childCount() == 0 {
		return 1
	}
	return s.heap.nodeCount
}

func (s Subtree) VisibleChildCount() uint32 {
	if s.ChildCount() == 0 {
		return 0
	}
	return s.heap.visibleChildCount
}

func (s Subtree) NamedChildCount() uint32 {
	if s.ChildCount() == 0 {
		return 0
	}
	return s.heap.namedChildCount
}

func (s Subtree) ErrorCost() uint32 {
	if s.IsMissing() {
		return costMissingTree + costRecovery
	}
	if s.isInline() {
		return 0
	}
	return s.heap.errorCost
}

func (s Subtree) DynamicPrecedence() int32 {
	if s.isInline() || s.heap.childCount() == 0 {
		return 0
	}
	return s.heap.dynPrecedence
}

func (s Subtree) Production() ProductionID {
	if s.ChildCount() == 0 {
		return 0
	}
	return s.heap.production
}

func (s Subtree) FragileLeft() bool {
	if s.isInline() {
		return false
	}
	return s.heap.flags.FragileLeft
}

func (s Subtree) FragileRight() bool {
	if s.isInline() {
		return false
	}
	return s.heap.flags.FragileRight
}

func (s Subtree) IsFragile() bool {
	return s.FragileLeft() || s.FragileRight()
}

func (s Subtree) HasExternalTokens() bool {
	if s.isInline() {
		return false
	}
	return s.heap.flags.HasExternalTokens
}

func (s Subtree) IsError() bool { return s.Symbol() == SymbolError }
func (s Subtree) IsEOF() bool   { return s.Symbol() == SymbolEnd }

func (s Subtree) IsErrorRepeat() bool {
	return s.IsError() && !s.isInline() && s.heap.isErrorRepeat
}

// LeafSymbol returns the symbol of this subtree's own leftmost leaf,
// regardless of how deep it sits (used by reuse and lex-mode matching).
func (s Subtree) LeafSymbol() Symbol {
	if s.isInline() {
		return s.symbol
	}
	if s.heap.childCount() == 0 {
		return s.heap.symbol
	}
	return s.heap.firstLeafSymbol
}

func (s Subtree) LeafParseState() StateID {
	if s.isInline() {
		return StateID(s.parseState)
	}
	if s.heap.childCount() == 0 {
		return s.heap.parseState
	}
	return s.heap.firstLeafState
}

// LookaheadChar returns the offending code point an ERROR leaf carries.
func (s Subtree) LookaheadChar() int32 {
	if s.isInline() || s.heap.childCount() != 0 {
		return -1
	}
	return s.heap.lookaheadChar
}

// ExternalScannerState returns the serialized external-scanner state this
// leaf carries, or nil if it has none.
func (s Subtree) ExternalScannerState() []byte {
	if s.isInline() || s.heap.childCount() != 0 {
		return nil
	}
	return s.heap.externalState
}

// --- refcounting (spec §3 invariant 5, §5 "atomic ops with release/acquire
// semantics on decrement-to-zero") ---

func (s Subtree) Retain() {
	if s.heap == nil {
		return
	}
	s.heap.refcount.Add(1)
}

// Refcount returns the subtree's current reference count, or 1 for an
// inline representation (which is copied by value and never shared via
// the heap arena, so it has no real refcount to report).
func (s Subtree) Refcount() int32 {
	if s.heap == nil {
		return 1
	}
	return s.heap.refcount.Load()
}

// Release decrements the refcount; at zero, children are released via an
// explicit worklist (never recursively) to bound stack depth regardless of
// repeat-chain depth (spec §9 "Iterative teardown").
func (s Subtree) Release(pool *SubtreePool) {
	if s.heap == nil {
		return
	}
	pool.release(s)
}

const inlineMaxPaddingByte = 0xFF
const inlineMaxPaddingRow = 0x0F
const inlineMaxLookaheadBytes = 0x0F

func fitsInline(symbol Symbol, padding, size Length, lookaheadBytes uint32, hasExternalTokens bool) bool {
	if hasExternalTokens {
		return false
	}
	if symbol > 0xFF {
		return false
	}
	if padding.Bytes > inlineMaxPaddingByte || padding.Point.Row > inlineMaxPaddingRow || padding.Point.Column > inlineMaxPaddingByte {
		return false
	}
	if size.Bytes > inlineMaxPaddingByte || size.Point.Row > 0 {
		return false
	}
	if lookaheadBytes > inlineMaxLookaheadBytes {
		return false
	}
	return true
}
