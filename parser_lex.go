package glrtree

// lex runs one scan at the lexer's current position under the given
// parse state: external scanner first if the state's lex mode enables
// one, then the language's internal LexFn, falling back to a
// single-code-point ERROR leaf if nothing matches (spec §4.2).
//
// Scanner payload is created fresh per call rather than persisted across
// shifts via Serialize/Deserialize keyed by stack version; an external
// scanner that depends on state carried between tokens within one
// version (most don't — testlang's tag-text scanner and ExternalVMScanner's
// state register in general are both stateless across calls here) would
// need that persistence wired through StackNode.externalTokenState, which
// carries the bytes but isn't fed back into Create yet. Noted as an open
// simplification rather than silently dropped.
func (p *Parser) lex(lexer *Lexer, state StateID) (Token, Subtree) {
	lexer.startToken()
	mode := p.language.LexMode(state)

	if mode.hasExternalTokens() && p.language.ExternalScanner != nil {
		el := &ExternalLexer{Lexer: lexer}
		payload := p.language.ExternalScanner.Create()
		if p.language.ExternalScanner.Scan(payload, el, mode.ExternalTokens) {
			tok, ok := lexer.token()
			if ok {
				buf := make([]byte, 64)
				n := p.language.ExternalScanner.Serialize(payload, buf)
				tok.externalState = append([]byte(nil), buf[:n]...)
				leaf := NewLeaf(p.pool, p.language, tok.Symbol, tok.Padding, tok.Size, tok.LookaheadBytes, state, true, false)
				return tok, leaf
			}
		}
		lexer.startToken()
	}

	fn := p.language.LexFn
	if fn != nil && fn(lexer, mode.LexState) {
		tok, ok := lexer.token()
		if ok {
			isKeyword := false
			if p.language.HasKeywordCaptureFunc && tok.Symbol == p.language.KeywordCaptureToken && p.language.KeywordLexFn != nil {
				isKeyword = true
			}
			leaf := NewLeaf(p.pool, p.language, tok.Symbol, tok.Padding, tok.Size, tok.LookaheadBytes, state, false, isKeyword)
			return tok, leaf
		}
	}

	if lexer.EOF() {
		return Token{Symbol: SymbolEnd}, NewLeaf(p.pool, p.language, SymbolEnd, LengthZero, LengthZero, 0, state, false, false)
	}

	r := lexer.Lookahead()
	lexer.Advance(false)
	lexer.MarkEnd()
	padding := subClamped(lexer.tokenStart, lexer.lexStart)
	size := subClamped(lexer.tokenEnd, lexer.tokenStart)
	return Token{Symbol: SymbolError}, NewErrorLeaf(p.pool, int32(r), padding, size, 0, state)
}
