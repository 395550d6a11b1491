package testlang

import "github.com/odvcencio-labs/glrtree"

// Tag symbol IDs for a minimal markup grammar:
//
//	Tag -> '<' NAME '>' TEXT '</' NAME '>'
//
// This is a single straight-line production (no choice points), chosen to
// exercise the lexer's per-state LexMode dispatch — five distinct lex
// states (open-bracket, name, close-bracket, raw text, close-tag opener) driven purely by
// which parse state is active — without also needing a nontrivial LR
// table to go with it.
//
// Adapted from the teacher's grammars/html_lexer.go, which tracked the
// same open/close/attribute distinctions as instance fields on a
// hand-rolled token-pull lexer (inTag, inEndTag, expectTagName). Here the
// distinction is expressed the way this core's Language already models
// state-dependent lexing: LexMode.LexState selects which branch of lexTag
// runs, so the "are we inside a tag" bookkeeping lives in the parse
// table's state graph instead of a second, separate mutable struct.
const (
	TagSymEnd glrtree.Symbol = iota
	TagSymLT
	TagSymName
	TagSymGT
	TagSymText
	TagSymLTSlash
	TagSymNT
)

const (
	tagLexNormal uint16 = iota // expect '<'
	tagLexName                 // expect an identifier
	tagLexGT                   // expect '>'
	tagLexText                 // expect raw text up to the next '<'
	tagLexClose                // expect '</'
)

const (
	tagS0 glrtree.StateID = iota
	tagS1
	tagS2
	tagS3
	tagS4
	tagS5
	tagS6
	tagS7
	tagS8
)

const tagProdTag glrtree.ProductionID = 0

// NewTag builds the minimal "<name>text</name>" markup language. The raw
// text body (tagS3) is recognized by an ExternalVMScanner rather than
// lexTag's internal dispatch: it is the one token in this grammar whose
// recognition is a pure run-to-delimiter scan with no parse-state
// branching of its own, the shape external_vm.go's teacher-derived bytecode
// VM exists to interpret (spec §4.2/§6 "external scanner").
func NewTag() *glrtree.Language {
	lang := &glrtree.Language{
		ABIVersion:         15,
		Name:               "tag",
		SymbolCount:        7,
		TokenCount:         6,
		ExternalTokenCount: 1,

		SymbolNames: []string{"end", "<", "name", ">", "text", "</", "tag"},
		SymbolMetas: []glrtree.SymbolMeta{
			{Visible: false, Named: false}, // end
			{Visible: true, Named: false},  // <
			{Visible: true, Named: true},   // name
			{Visible: true, Named: false},  // >
			{Visible: true, Named: true},   // text
			{Visible: true, Named: false},  // </
			{Visible: true, Named: true},   // tag
		},

		LexModes: []glrtree.LexMode{
			tagS0: {LexState: tagLexNormal},
			tagS1: {LexState: tagLexName},
			tagS2: {LexState: tagLexGT},
			tagS3: {LexState: tagLexText, ExternalTokens: []bool{true}},
			tagS4: {LexState: tagLexClose},
			tagS5: {LexState: tagLexName},
			tagS6: {LexState: tagLexGT},
			tagS7: {LexState: tagLexNormal},
			tagS8: {LexState: tagLexNormal},
		},
		LexFn:           lexTag,
		ExternalScanner: newTagTextScanner(),

		Productions: []glrtree.ProductionInfo{
			tagProdTag: {},
		},
	}

	table := glrtree.NewParseTable()
	shift := func(s glrtree.StateID) glrtree.ActionEntry {
		return glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionShift, State: s}}}
	}

	table.SetAction(tagS0, TagSymLT, shift(tagS1))
	table.SetAction(tagS1, TagSymName, shift(tagS2))
	table.SetAction(tagS2, TagSymGT, shift(tagS3))
	table.SetAction(tagS3, TagSymText, shift(tagS4))
	table.SetAction(tagS4, TagSymLTSlash, shift(tagS5))
	table.SetAction(tagS5, TagSymName, shift(tagS6))
	table.SetAction(tagS6, TagSymGT, shift(tagS7))
	table.SetAction(tagS7, TagSymEnd, glrtree.ActionEntry{Actions: []glrtree.ParseAction{
		{Type: glrtree.ActionReduce, Symbol: TagSymNT, Count: 7, Production: tagProdTag},
	}})
	table.SetGoto(tagS0, TagSymNT, tagS8)
	table.SetAction(tagS8, TagSymEnd, glrtree.ActionEntry{Actions: []glrtree.ParseAction{{Type: glrtree.ActionAccept}}})

	lang.ParseTable = table
	return lang
}

// lexTag dispatches on the active parse state's LexState to recognize
// exactly the one token shape that state can legally shift (spec §4.2
// "internal lex state selects a DFA region").
func lexTag(lexer *glrtree.Lexer, state uint16) bool {
	switch state {
	case tagLexNormal:
		return lexLiteral(lexer, "<", TagSymLT)
	case tagLexClose:
		return lexLiteral(lexer, "</", TagSymLTSlash)
	case tagLexGT:
		return lexLiteral(lexer, ">", TagSymGT)
	case tagLexName:
		return lexName(lexer)
	case tagLexText:
		return lexText(lexer)
	default:
		return false
	}
}

func lexLiteral(lexer *glrtree.Lexer, lit string, sym glrtree.Symbol) bool {
	for i, want := range lit {
		if i == 0 {
			if lexer.Lookahead() != want {
				return false
			}
		} else if lexer.EOF() || lexer.Lookahead() != want {
			return false
		}
		lexer.Advance(false)
	}
	lexer.MarkEnd()
	lexer.SetResultSymbol(sym)
	return true
}

func lexName(lexer *glrtree.Lexer) bool {
	if !isNameStart(lexer.Lookahead()) {
		return false
	}
	lexer.Advance(false)
	for !lexer.EOF() && isNamePart(lexer.Lookahead()) {
		lexer.Advance(false)
	}
	lexer.MarkEnd()
	lexer.SetResultSymbol(TagSymName)
	return true
}

// lexText is tagS3's internal fallback, reached only if newTagTextScanner
// ever declines the token (it doesn't, for any non-empty run up to '<' or
// EOF, but parser_lex.go always retries the internal lexer on a declined
// external scan, so this stays correct on its own).
func lexText(lexer *glrtree.Lexer) bool {
	if lexer.EOF() || lexer.Lookahead() == '<' {
		return false
	}
	for !lexer.EOF() && lexer.Lookahead() != '<' {
		lexer.Advance(false)
	}
	lexer.MarkEnd()
	lexer.SetResultSymbol(TagSymText)
	return true
}

// newTagTextScanner recognizes tagS3's raw text body with the bytecode VM
// instead of a hand-written Go loop: advance while the lookahead is
// neither '<' nor EOF, matching lexText's own rule that a completely empty
// run (immediate '<' or EOF) is not a text token at all.
func newTagTextScanner() *glrtree.ExternalVMScanner {
	const (
		checkEOF = 3
		advance  = 5
		loopEOF  = 8
		loopBack = 10
		done     = 11
		fail     = 13
	)
	return glrtree.MustNewExternalVMScanner(glrtree.ExternalVMProgram{
		Code: []glrtree.ExternalVMInstr{
			glrtree.VMRequireValid(0, fail),     // 0: external token must be valid here
			glrtree.VMIfRuneEq('<', checkEOF),   // 1: empty text before '<' -> fail
			glrtree.VMJump(fail),                // 2
			glrtree.VMIfRuneEq(0, advance),      // 3: empty text at EOF -> fail
			glrtree.VMJump(fail),                // 4
			glrtree.VMAdvance(false),            // 5: consume one code point
			glrtree.VMIfRuneEq('<', loopEOF),    // 6: stop before '<'
			glrtree.VMJump(done),                // 7
			glrtree.VMIfRuneEq(0, loopBack),     // 8: stop at EOF
			glrtree.VMJump(done),                // 9
			glrtree.VMJump(advance),             // 10: otherwise keep consuming
			glrtree.VMMarkEnd(),                 // 11: done
			glrtree.VMEmit(TagSymText),          // 12
			glrtree.VMFail(),                    // 13: fail
		},
		MaxSteps: 4096,
	})
}

func isNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNamePart(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9') || r == '-'
}
