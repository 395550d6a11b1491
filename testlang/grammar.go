// Package testlang is a hand-built toy language used to exercise the
// core parser without depending on a real tree-sitter grammar's
// generated parser.c.
package testlang

import "github.com/odvcencio-labs/glrtree"

// Symbol IDs for the "ab" grammar:
//
//	S -> A B
//	A -> A 'a' | 'a'
//	B -> 'b'
//
// END is always symbol 0. Tokens come before nonterminals in the symbol
// space (TokenCount draws the line).
const (
	SymEnd glrtree.Symbol = iota
	SymA
	SymB
	SymNTA
	SymNTB
	SymNTS
)

// States of the grammar's LR(0) automaton, numbered in construction order:
//
//	I0: S'->.S, S->.A B, A->.A a, A->.a
//	I1: S'->S.                          (goto I0 on S)
//	I2: S->A.B, A->A.a, B->.b            (goto I0 on A)
//	I3: A->a.                            (goto I0 on 'a')
//	I4: S->A B.                          (goto I2 on B)
//	I5: A->A a.                          (goto I2 on 'a')
//	I6: B->b.                            (goto I2 on 'b')
const (
	stI0 glrtree.StateID = iota
	stI1
	stI2
	stI3
	stI4
	stI5
	stI6
)

// Production IDs, matching the order they're assigned above.
const (
	prodSAB glrtree.ProductionID = iota // S -> A B
	prodAAa                             // A -> A a
	prodAa                              // A -> a
	prodBb                              // B -> b
)

// New builds the "ab" language: an SLR(1) grammar small enough to derive
// and check its table by hand, used by the parser tests and
// cmd/glrtreedump in place of a generated grammar.
func New() *glrtree.Language {
	lang := &glrtree.Language{
		ABIVersion:  15,
		Name:        "ab",
		SymbolCount: 6,
		TokenCount:  3,

		SymbolNames: []string{"end", "a", "b", "A", "B", "S"},
		SymbolMetas: []glrtree.SymbolMeta{
			{Visible: false, Named: false}, // end
			{Visible: true, Named: false},  // 'a'
			{Visible: true, Named: false},  // 'b'
			{Visible: true, Named: true},   // A
			{Visible: true, Named: true},   // B
			{Visible: true, Named: true},   // S
		},

		LexModes: make([]glrtree.LexMode, 7),
		LexFn:    lexAB,

		Productions: []glrtree.ProductionInfo{
			prodSAB: {},
			prodAAa: {},
			prodAa:  {},
			prodBb:  {},
		},
	}

	table := glrtree.NewParseTable()

	table.SetAction(stI0, SymA, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionShift, State: stI3}}})
	table.SetGoto(stI0, SymNTA, stI2)
	table.SetGoto(stI0, SymNTS, stI1)

	table.SetAction(stI1, SymEnd, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionAccept}}})

	table.SetAction(stI2, SymA, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionShift, State: stI5}}})
	table.SetAction(stI2, SymB, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionShift, State: stI6}}})
	table.SetGoto(stI2, SymNTB, stI4)

	table.SetAction(stI3, SymA, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTA, Count: 1, Production: prodAa}}})
	table.SetAction(stI3, SymB, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTA, Count: 1, Production: prodAa}}})

	table.SetAction(stI4, SymEnd, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTS, Count: 2, Production: prodSAB}}})

	table.SetAction(stI5, SymA, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTA, Count: 2, Production: prodAAa}}})
	table.SetAction(stI5, SymB, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTA, Count: 2, Production: prodAAa}}})

	table.SetAction(stI6, SymEnd, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionReduce, Symbol: SymNTB, Count: 1, Production: prodBb}}})

	lang.ParseTable = table
	return lang
}

// lexAB recognizes a single 'a' or 'b' token, skipping ASCII whitespace as
// padding first (spec's internal-lexer contract: advance-as-skip for
// trivia, then advance-as-content for the token body, then MarkEnd).
func lexAB(lexer *glrtree.Lexer, _ uint16) bool {
	for !lexer.EOF() && isSpace(lexer.Lookahead()) {
		lexer.Advance(true)
	}
	if lexer.EOF() {
		return false
	}
	r := lexer.Lookahead()
	switch r {
	case 'a':
		lexer.Advance(false)
		lexer.MarkEnd()
		lexer.SetResultSymbol(SymA)
		return true
	case 'b':
		lexer.Advance(false)
		lexer.MarkEnd()
		lexer.SetResultSymbol(SymB)
		return true
	default:
		return false
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
