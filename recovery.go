package glrtree

// recoverVersion runs when the parse table has no action for (state,
// tok.Symbol): neither shift nor reduce applies at version v's head under
// the current lookahead (spec §4.4.1 "Error recovery").
//
// Two strategies run as separate forks, mirroring the driver's own
// shift/shift-extra forking: Strategy 1 assumes a token is missing and
// inserts a zero-width MISSING leaf for each terminal the table accepts
// in this state, letting the ordinary step loop immediately retry the
// shift/reduce it unlocks next round. Strategy 2 assumes the lookahead
// itself is garbage and wraps it as an ERROR leaf, staying on the same
// state so the next lookahead gets another chance. A version with nodes
// pushed since its last error but no advance past it, whose error cost
// exceeds four times costMaxDifference, is halted outright rather than
// left to fork forever.
//
// leaf is whatever lex already built for tok: when tok.Symbol is
// SymbolError that's already a single-code-point ERROR leaf carrying the
// offending rune (spec §4.2's lookahead_char), built by lex's own
// fallback path with padding/size lex already computed; Strategy 2 below
// reuses it rather than trying to rebuild one from tok, whose Size/
// Padding are only meaningful when lex instead returned a recognized
// token that the grammar simply doesn't accept here.
func (p *Parser) recoverVersion(stack *Stack, v int, lexer *Lexer, tok Token, leaf Subtree) {
	if stack.NodeCountSinceError(v) > 0 && !stack.HasAdvancedSinceError(v) && stack.ErrorCost(v) > costMaxDifference*4 {
		stack.Halt(v)
		return
	}

	state := stack.State(v)
	candidates := p.language.ParseTable.ValidSymbolsAt(state)

	for _, sym := range candidates {
		if sym == tok.Symbol {
			continue
		}
		entry := p.language.ParseTable.Action(state, sym)
		if entry == nil || len(entry.Actions) == 0 {
			continue
		}
		act := entry.Actions[0]
		if act.Type != ActionShift || act.Extra {
			continue
		}
		nv := stack.Fork(v)
		missing := NewMissingLeaf(p.pool, p.language, sym, LengthZero, state)
		stack.Push(nv, act.State, missing, stack.ExternalTokenState(v))
	}

	// Whatever was forked above lives on as its own version; v itself has
	// no action for this lookahead and, at EOF, nothing left to wrap as an
	// ERROR either, so v is a dead end regardless of what got forked off it.
	if tok.Symbol == SymbolEnd {
		stack.Halt(v)
		return
	}

	var errLeaf Subtree
	if tok.Symbol == SymbolError {
		errLeaf = leaf
	} else {
		// A recognized token just isn't valid here: wrap its whole span as
		// an opaque ERROR rather than any single offending code point.
		padding := LengthZero
		size := Length{Bytes: tok.Size.Bytes + tok.Padding.Bytes, Point: tok.Size.Point.Add(tok.Padding.Point)}
		if size.Bytes == 0 {
			stack.Halt(v)
			return
		}
		errLeaf = NewErrorLeaf(p.pool, 0, padding, size, tok.LookaheadBytes, state)
	}
	stack.Push(v, state, errLeaf, nil)
}
