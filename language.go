package glrtree

import "sort"

// Symbol identifies a grammar symbol: either a terminal (token) or a
// nonterminal, depending on whether it falls below a language's TokenCount.
type Symbol uint16

// StateID identifies a parse-table state.
type StateID uint16

// FieldID identifies a named child field (spec §6 field_names).
type FieldID uint16

// ProductionID indexes into a language's alias-sequence and field-map
// tables (GLOSSARY "Production ID").
type ProductionID uint16

const (
	// SymbolEnd is the EOF token symbol (spec §3 "Marks extra = (symbol == END)").
	SymbolEnd Symbol = 0
	// SymbolError is the builtin ERROR symbol (spec §3 subtree variant payload).
	SymbolError Symbol = 0xFFFF
)

// minSupportedABI/maxSupportedABI bound the language ABI versions this core
// accepts (spec §6 "rejects languages whose ABI version is below the
// minimum or above the maximum supported").
const (
	minSupportedABI = 13
	maxSupportedABI = 15
)

// SymbolMeta carries the per-symbol visible/named classification the arena
// consults when building leaves (spec §4.1 "new_leaf... looks up symbol
// metadata").
type SymbolMeta struct {
	Visible bool
	Named   bool
}

// ParseActionType enumerates the driver's applicable actions (spec §4.4).
type ParseActionType uint8

const (
	ActionShift ParseActionType = iota
	ActionReduce
	ActionAccept
	ActionRecover
)

// ParseAction is one table entry. Multiple actions for the same
// (state, symbol) pair encode a GLR ambiguity: the driver forks one stack
// version per action.
type ParseAction struct {
	Type              ParseActionType
	State             StateID // ActionShift: state to shift into
	Extra             bool    // ActionShift: shift-extra, state unchanged
	Symbol            Symbol  // ActionReduce: produced nonterminal
	Count             uint32  // ActionReduce: number of non-extra children to pop
	Production        ProductionID
	DynamicPrecedence int32
}

// ActionEntry is the (possibly ambiguous) action list for one (state, symbol).
type ActionEntry struct {
	Actions []ParseAction
}

// LexMode describes, for one parse state, which internal lex state to run
// and which external tokens are valid to attempt (spec §4.2 step 2).
type LexMode struct {
	LexState       uint16
	ExternalTokens []bool // indexed by external token id; nil if none are valid
}

func (m LexMode) hasExternalTokens() bool {
	for _, ok := range m.ExternalTokens {
		if ok {
			return true
		}
	}
	return false
}

// FieldMapEntry names one structural child position within a production.
type FieldMapEntry struct {
	StructuralChildIndex uint16
	Field                FieldID
}

// ProductionInfo holds the per-production alias and field tables a node's
// production_id indexes into (GLOSSARY "Alias sequence").
type ProductionInfo struct {
	// AliasSequence renames structural children at specific positions; a
	// zero Symbol means "no alias, use the subtree's own symbol".
	AliasSequence []Symbol
	FieldMap      []FieldMapEntry
}

// LexFunc is a language's internal (or keyword) scanner entry point. It
// behaves like an ExternalScanner.Scan but has no persisted payload and no
// valid-symbols gate: the language table already commits to exactly one
// lex function per state.
type LexFunc func(lexer *Lexer, state uint16) bool

// ExternalScanner is the interface a language's hand-written or
// bytecode-VM external scanner implements (spec §6). ExternalVMScanner
// (external_vm.go) is one concrete implementation.
type ExternalScanner interface {
	Create() any
	Destroy(payload any)
	Scan(payload any, lexer *ExternalLexer, validSymbols []bool) bool
	Serialize(payload any, buf []byte) int
	Deserialize(payload any, buf []byte)
}

// ParseTable is a dense (for small languages) (state, symbol) -> action /
// goto lookup. Spec §6 notes real tables use a sparse two-level scheme
// above a size threshold; this core only needs the logical lookup, so a
// single table abstraction suffices and a sparse implementation can be
// substituted behind the same interface without touching the driver.
type ParseTable struct {
	actions map[StateID]map[Symbol]*ActionEntry
	gotos   map[StateID]map[Symbol]StateID
}

// NewParseTable builds an empty parse table ready for incremental
// population (as a hand-built test language does) or bulk loading.
func NewParseTable() *ParseTable {
	return &ParseTable{
		actions: make(map[StateID]map[Symbol]*ActionEntry),
		gotos:   make(map[StateID]map[Symbol]StateID),
	}
}

func (t *ParseTable) SetAction(state StateID, sym Symbol, entry ActionEntry) {
	m, ok := t.actions[state]
	if !ok {
		m = make(map[Symbol]*ActionEntry)
		t.actions[state] = m
	}
	cp := entry
	m[sym] = &cp
}

func (t *ParseTable) SetGoto(state StateID, sym Symbol, next StateID) {
	m, ok := t.gotos[state]
	if !ok {
		m = make(map[Symbol]StateID)
		t.gotos[state] = m
	}
	m[sym] = next
}

func (t *ParseTable) Action(state StateID, sym Symbol) *ActionEntry {
	m, ok := t.actions[state]
	if !ok {
		return nil
	}
	return m[sym]
}

// ValidSymbolsAt lists every terminal the table has an entry for at state,
// used by error recovery's missing-token insertion to enumerate candidates
// without guessing at the whole symbol space.
func (t *ParseTable) ValidSymbolsAt(state StateID) []Symbol {
	m, ok := t.actions[state]
	if !ok {
		return nil
	}
	out := make([]Symbol, 0, len(m))
	for sym := range m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *ParseTable) Goto(state StateID, sym Symbol) (StateID, bool) {
	m, ok := t.gotos[state]
	if !ok {
		return 0, false
	}
	s, ok := m[sym]
	return s, ok
}

// Language is the opaque, pre-compiled language description the core
// consumes (spec §6 "Language table (consumed, not defined here)"). It is
// read-only once constructed; nothing in this core mutates it.
type Language struct {
	ABIVersion         int
	Name               string
	SymbolCount        int
	TokenCount         int
	ExternalTokenCount int

	SymbolNames    []string
	SymbolMetas    []SymbolMeta
	FieldNameTable []string

	KeywordCaptureToken   Symbol
	HasKeywordCaptureFunc bool

	LexModes     []LexMode
	ParseTable   *ParseTable
	Productions  []ProductionInfo
	LexFn        LexFunc
	KeywordLexFn LexFunc

	ExternalScanner ExternalScanner
}

func (l *Language) SymbolMetadata(sym Symbol) SymbolMeta {
	if int(sym) < len(l.SymbolMetas) {
		return l.SymbolMetas[sym]
	}
	return SymbolMeta{}
}

func (l *Language) SymbolName(sym Symbol) string {
	if sym == SymbolError {
		return "ERROR"
	}
	if int(sym) < len(l.SymbolNames) {
		return l.SymbolNames[sym]
	}
	return ""
}

func (l *Language) SymbolByName(name string) (Symbol, bool) {
	for i, n := range l.SymbolNames {
		if n == name {
			return Symbol(i), true
		}
	}
	return 0, false
}

func (l *Language) production(id ProductionID) ProductionInfo {
	if int(id) < len(l.Productions) {
		return l.Productions[id]
	}
	return ProductionInfo{}
}

func (l *Language) AliasSequence(id ProductionID) []Symbol {
	return l.production(id).AliasSequence
}

func (l *Language) FieldMap(id ProductionID) []FieldMapEntry {
	return l.production(id).FieldMap
}

func (l *Language) LexMode(state StateID) LexMode {
	if int(state) < len(l.LexModes) {
		return l.LexModes[state]
	}
	return LexMode{}
}

// IsSupportedABI reports whether this language's ABI version falls inside
// the range this core implementation understands (spec §6).
func (l *Language) IsSupportedABI() bool {
	return l.ABIVersion >= minSupportedABI && l.ABIVersion <= maxSupportedABI
}
