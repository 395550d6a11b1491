package glrtree

// Graph-structured parse stack (spec §4.3 "Parse stack"). Versions share
// history backward and only diverge going forward: a Fork duplicates a
// version's head pointer (bumping its refcount), and a Merge unifies two
// versions whose heads have reached the same (state, position, error
// cost, external-scanner state) back into one node carrying multiple
// alternative histories as separate links.
//
// Adapted from the teacher's glr.go: the teacher's glrStack was a flat,
// single-history slice of stackEntry (fine for a non-error-recovering,
// single-interpretation parse) plus slab-backed scratch buffers to avoid
// reallocating on every push/clone. This stack generalizes that entry
// list into a proper GSS (nodes with possibly multiple previous links) so
// that reduces popping back through a merge point can enumerate every
// surviving interpretation, which the teacher's model had no need to
// represent. The bounded node free-list below plays the same role as the
// teacher's slab allocator.
const (
	maxVersionCount  = 6
	maxLinkCount     = 8
	maxIteratorCount = 64
)

// StackNode is one position in the graph-structured stack: a parse state
// reached at a given document position, with one link per distinct
// history that arrives here (more than one only after a Merge).
type StackNode struct {
	state    StateID
	position Length

	errorCost             uint32
	nodeCountSinceError   uint32
	hasAdvancedSinceError bool
	externalTokenState    []byte

	previous []stackLink
	refcount int32
}

// stackLink is one edge in the graph-structured stack: the subtree that
// was shifted or reduced to arrive at the owning node, and which node it
// came from.
type stackLink struct {
	target  *StackNode
	subtree Subtree
}

// StackVersion is one of the parser's concurrently live interpretations.
type StackVersion struct {
	head    *StackNode
	halted  bool
	pending []Subtree // copied by Fork; nothing in this package appends to it (spec §4.4.1)
}

// Stack owns every version plus the node free-list.
type Stack struct {
	pool     *SubtreePool
	versions []*StackVersion
	free     []*StackNode
}

const maxFreeStackNodes = 50

// NewStack creates a stack with a single version at the given initial
// parse state, positioned at the start of the document.
func NewStack(pool *SubtreePool, initialState StateID) *Stack {
	s := &Stack{pool: pool}
	root := s.allocNode()
	root.state = initialState
	root.refcount = 1
	s.versions = append(s.versions, &StackVersion{head: root})
	return s
}

func (s *Stack) allocNode() *StackNode {
	if n := len(s.free); n > 0 {
		node := s.free[n-1]
		s.free = s.free[:n-1]
		*node = StackNode{}
		return node
	}
	return &StackNode{}
}

func (s *Stack) freeNode(n *StackNode) {
	if len(s.free) >= maxFreeStackNodes {
		return
	}
	n.previous = nil
	n.externalTokenState = nil
	s.free = append(s.free, n)
}

// VersionCount reports how many (non-halted) versions are live.
func (s *Stack) VersionCount() int {
	n := 0
	for _, v := range s.versions {
		if !v.halted {
			n++
		}
	}
	return n
}

func (s *Stack) Version(i int) *StackVersion { return s.versions[i] }

func (s *Stack) State(v int) StateID    { return s.versions[v].head.state }
func (s *Stack) Position(v int) Length  { return s.versions[v].head.position }
func (s *Stack) ErrorCost(v int) uint32 { return s.versions[v].head.errorCost }
func (s *Stack) NodeCountSinceError(v int) uint32 {
	return s.versions[v].head.nodeCountSinceError
}
func (s *Stack) HasAdvancedSinceError(v int) bool {
	return s.versions[v].head.hasAdvancedSinceError
}
func (s *Stack) ExternalTokenState(v int) []byte {
	return s.versions[v].head.externalTokenState
}
func (s *Stack) Halted(v int) bool { return s.versions[v].halted }
func (s *Stack) Halt(v int)        { s.versions[v].halted = true }

// Push shifts or reduces subtree onto version v, taking ownership of the
// one reference subtree already holds (spec §4.3, §9 "ownership
// transfers into the stack on push").
func (s *Stack) Push(v int, state StateID, subtree Subtree, externalTokenState []byte) {
	old := s.versions[v].head
	node := s.allocNode()
	node.state = state
	node.refcount = 1
	node.position = old.position.Add(subtree.TotalSize())
	node.externalTokenState = externalTokenState

	if subtree.IsError() || subtree.IsMissing() {
		node.errorCost = old.errorCost + subtree.ErrorCost()
		node.nodeCountSinceError = 0
		node.hasAdvancedSinceError = false
	} else {
		node.errorCost = old.errorCost
		node.nodeCountSinceError = old.nodeCountSinceError + 1
		node.hasAdvancedSinceError = old.hasAdvancedSinceError || subtree.TotalBytes() > 0
	}

	node.previous = []stackLink{{target: old, subtree: subtree}}
	s.versions[v].head = node
}

// Fork duplicates version v so the driver can apply more than one action
// for the same (state, symbol) pair: the new version shares v's entire
// history and only diverges on the next Push (spec §4.4 "one stack
// version per ambiguous action").
func (s *Stack) Fork(v int) int {
	head := s.versions[v].head
	head.refcount++
	nv := &StackVersion{head: head}
	if len(s.versions[v].pending) > 0 {
		nv.pending = append([]Subtree(nil), s.versions[v].pending...)
	}
	s.versions = append(s.versions, nv)
	return len(s.versions) - 1
}

func mergeable(a, b *StackNode) bool {
	return a.state == b.state &&
		a.position.Bytes == b.position.Bytes &&
		a.errorCost == b.errorCost &&
		bytesEqual(a.externalTokenState, b.externalTokenState)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge unifies versions vA and vB if their heads are mergeable, keeping
// every distinct incoming history as a separate link (capped at
// maxLinkCount) so a later reduce can still enumerate each interpretation
// (spec §4.3 "merge stacks with identical top states", §4.4 "condense").
// vB is halted on success.
func (s *Stack) Merge(vA, vB int) bool {
	a, b := s.versions[vA].head, s.versions[vB].head
	if a == b {
		s.versions[vB].halted = true
		return true
	}
	if !mergeable(a, b) {
		return false
	}
	merged := s.allocNode()
	*merged = *a
	merged.refcount = 1
	merged.previous = append(append([]stackLink(nil), a.previous...), b.previous...)
	if len(merged.previous) > maxLinkCount {
		merged.previous = merged.previous[:maxLinkCount]
	}
	s.versions[vA].head = merged
	s.versions[vB].halted = true
	return true
}

// PopResult is one enumerated backward path of a PopCount call: the
// popped subtrees in left-to-right (shift) order, and the node that sat
// below them.
type PopResult struct {
	Subtrees []Subtree
	Base     *StackNode
}

// PopCount walks count links backward from version v's head, branching
// at every node with more than one incoming link, and returns one
// PopResult per distinct path discovered (bounded at maxIteratorCount;
// further paths are silently dropped, matching the stated cap). It does
// not mutate the stack; the caller installs the winning result(s) with
// SetHead. Reduce (parser.go) is the only caller: it needs every
// surviving interpretation of the popped span to build one candidate
// reduced subtree per interpretation (spec §4.3 "pop is itself
// branching", §4.4).
func (s *Stack) PopCount(v int, count int) []PopResult {
	type frame struct {
		node     *StackNode
		subtrees []Subtree
		left     int
	}
	var results []PopResult
	stack := []frame{{node: s.versions[v].head, left: count}}
	for len(stack) > 0 && len(results) < maxIteratorCount {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.left == 0 {
			results = append(results, PopResult{Subtrees: reverseSubtrees(f.subtrees), Base: f.node})
			continue
		}
		for _, link := range f.node.previous {
			next := append(append([]Subtree(nil), f.subtrees...), link.subtree)
			stack = append(stack, frame{node: link.target, subtrees: next, left: f.left - 1})
			if len(stack)+len(results) > maxIteratorCount*4 {
				break
			}
		}
	}
	return results
}

func reverseSubtrees(s []Subtree) []Subtree {
	out := make([]Subtree, len(s))
	for i, x := range s {
		out[len(s)-1-i] = x
	}
	return out
}

// SetHead installs base as version v's new head after a reduce consumed
// everything PopCount returned for the chosen interpretation.
func (s *Stack) SetHead(v int, base *StackNode) {
	s.versions[v].head = base
}

// RemoveVersion permanently drops version v (spec §4.4 "condense... cap
// at MAX_VERSION_COUNT").
func (s *Stack) RemoveVersion(v int) {
	s.versions[v].halted = true
}

// versionStatus is the per-version snapshot condense's dominance
// comparison weighs (spec §4.4 "compare_versions"): error cost, how many
// nodes have been shifted/reduced since the last error (a cost gap right
// after an error is far less trustworthy than the same gap many
// error-free steps later), and the dynamic precedence carried by the
// subtree most recently pushed.
type versionStatus struct {
	cost              uint32
	nodeCount         uint32
	dynamicPrecedence int32
}

func (s *Stack) versionStatus(v int) versionStatus {
	head := s.versions[v].head
	var dp int32
	if len(head.previous) > 0 {
		dp = head.previous[0].subtree.DynamicPrecedence()
	}
	return versionStatus{cost: head.errorCost, nodeCount: head.nodeCountSinceError, dynamicPrecedence: dp}
}

// versionComparison is compare_versions' verdict on a pair of statuses
// (spec §4.4): which side, if either, dominates outright versus merely
// edges out the other.
type versionComparison int

const (
	cmpNone versionComparison = iota
	cmpPreferLeft
	cmpTakeLeft
	cmpPreferRight
	cmpTakeRight
)

// compareVersionStatus decides whether a's lower cost is decisive enough
// to drop b outright, or merely preferred: the gap only dominates once
// cost_gap * (1 + node_count) exceeds costMaxDifference, so a cheap
// interpretation reached moments after an error doesn't get to eliminate
// a more established one on a technicality (spec §4.4 "condense").
func compareVersionStatus(a, b versionStatus) versionComparison {
	if a.cost < b.cost {
		if (b.cost-a.cost)*(1+a.nodeCount) > costMaxDifference {
			return cmpTakeLeft
		}
		return cmpPreferLeft
	}
	if b.cost < a.cost {
		if (a.cost-b.cost)*(1+b.nodeCount) > costMaxDifference {
			return cmpTakeRight
		}
		return cmpPreferRight
	}
	if a.dynamicPrecedence > b.dynamicPrecedence {
		return cmpPreferLeft
	}
	if b.dynamicPrecedence > a.dynamicPrecedence {
		return cmpPreferRight
	}
	return cmpNone
}

// Compact drops halted versions from the live list, preserving order.
func (s *Stack) Compact() {
	alive := s.versions[:0]
	for _, v := range s.versions {
		if !v.halted {
			alive = append(alive, v)
		}
	}
	s.versions = alive
}
