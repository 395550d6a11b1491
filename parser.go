package glrtree

import (
	"context"
	"log/slog"
)

// opCountPerTimeoutCheck bounds how often the driver polls for
// cancellation, trading a little latency for not calling context.Err on
// every single operation (spec §4.4 "polls for cancellation every
// OP_COUNT_PER_TIMEOUT_CHECK operations").
const opCountPerTimeoutCheck = 100

// Parser drives a GLR parse: one Language, one Stack of concurrently live
// interpretations, and one shared Lexer repositioned to whichever
// version currently needs input (spec §4.4 "Parser driver").
//
// Adapted from the teacher's simpler single-interpretation loop (which
// never needed to track more than one glrStack at a time, since it had
// no ambiguity/error-recovery forking): this driver generalizes that loop
// body into a per-version step function invoked over every live version
// each round, condensing versions back down via Stack.Merge whenever two
// converge, matching spec §4.4's GLR step/condense cycle.
type Parser struct {
	language *Language
	pool     *SubtreePool
	logger   *slog.Logger

	halted bool
}

// NewParser constructs a parser for the given language.
func NewParser(lang *Language) *Parser {
	return &Parser{language: lang, pool: NewSubtreePool(), logger: slog.Default()}
}

// SetLogger replaces the parser's stored logger (spec's ambient logging
// stack, slog.Logger as the teacher's sibling repos use it). The driver
// does not log anything through it.
func (p *Parser) SetLogger(l *slog.Logger) { p.logger = l }

// ParseResult is what Parse returns: the finished tree (the accepted one,
// or the lowest-error-cost head seen if no version reached ActionAccept)
// plus HasError, which reports whether that tree contains any ERROR or
// MISSING node (the same test as the root's own HasError()).
type ParseResult struct {
	Tree     *Tree
	HasError bool
}

// Parse runs the GLR driver to completion (or until ctx is canceled). If
// oldTree is non-nil, its subtrees are offered for incremental reuse
// (spec §4.4, §4.5.2).
func (p *Parser) Parse(ctx context.Context, input Input, oldTree *Tree) (*ParseResult, error) {
	stack := NewStack(p.pool, 0)
	lexer := NewLexer(input, nil)
	var reuse *reuseCursor
	if oldTree != nil {
		reuse = newReuseCursor(oldTree, lexer)
	}

	opCount := 0
	var winner *StackNode
	// fallback tracks the lowest-error-cost head seen across every round,
	// halted or not: condense's own Compact() drops halted versions from
	// stack.versions at the end of each round, so by the time the loop
	// exits (no accept reached, every version eventually halted) there is
	// nothing left in stack.versions to recover a best-effort tree from
	// unless it was captured here first.
	var fallback *StackNode

	for winner == nil {
		if stack.VersionCount() == 0 {
			break
		}

		n := len(stack.versions)
		for v := 0; v < n; v++ {
			if stack.Halted(v) {
				continue
			}

			opCount++
			if opCount%opCountPerTimeoutCheck == 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
			}

			state := stack.State(v)
			lexer.seek(stack.Position(v))

			if p.tryReuse(p.language, stack, v, reuse, stack.Position(v).Bytes) {
				continue
			}

			tok, leaf := p.lex(lexer, state)

			entry := p.language.ParseTable.Action(state, tok.Symbol)
			if entry == nil || len(entry.Actions) == 0 {
				p.recoverVersion(stack, v, lexer, tok, leaf)
				continue
			}

			for k := 1; k < len(entry.Actions); k++ {
				nv := stack.Fork(v)
				p.applyAction(stack, nv, entry.Actions[k], tok, leaf)
				if entry.Actions[k].Type == ActionAccept {
					winner = stack.versions[nv].head
				}
			}
			p.applyAction(stack, v, entry.Actions[0], tok, leaf)
			if entry.Actions[0].Type == ActionAccept {
				winner = stack.versions[v].head
			}
		}

		for _, sv := range stack.versions {
			// A head with no previous link is the untouched initial
			// sentinel: it has error cost 0 by construction but carries no
			// subtree at all, so it must never win the fallback comparison
			// over a version that actually shifted or reduced something.
			if len(sv.head.previous) == 0 {
				continue
			}
			if fallback == nil || sv.head.errorCost < fallback.errorCost {
				fallback = sv.head
			}
		}

		p.condense(stack)
	}

	if winner == nil {
		// No version ever reached accept: fall back to the lowest-error-cost
		// head seen over the whole parse, halted or not.
		if fallback == nil {
			return nil, errNoParse
		}
		winner = fallback
	}

	root := winner.previous[0].subtree
	tree := NewTree(p.pool, p.language, root, nil, nil)
	return &ParseResult{Tree: tree, HasError: subtreeHasErrorDescendant(root)}, nil
}

var errNoParse = &parseError{"no surviving parse version"}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// applyAction performs one shift/reduce/shift-extra step on version v
// (spec §4.4). tok is only consumed (advances the version's position) by
// ActionShift; ActionReduce pops via Stack.PopCount and re-derives the
// goto target instead.
func (p *Parser) applyAction(stack *Stack, v int, act ParseAction, tok Token, leaf Subtree) {
	switch act.Type {
	case ActionShift:
		state := act.State
		if act.Extra {
			state = stack.State(v)
		}
		stack.Push(v, state, leaf, tok.externalState)

	case ActionReduce:
		results := stack.PopCount(v, int(act.Count))
		if len(results) == 0 {
			return
		}
		// Pick the lowest-error-cost interpretation; ties favor
		// whichever PopCount enumerated first (stable, deterministic).
		best := results[0]
		for _, r := range results[1:] {
			if sumErrorCost(r.Subtrees) < sumErrorCost(best.Subtrees) {
				best = r
			}
		}
		node := NewNode(p.pool, p.language, act.Symbol, best.Subtrees, act.Production, act.DynamicPrecedence)
		node = p.pool.Balance(p.language, node)
		gotoState, ok := p.language.ParseTable.Goto(best.Base.state, act.Symbol)
		if !ok {
			gotoState = best.Base.state
		}
		stack.SetHead(v, best.Base)
		stack.Push(v, gotoState, node, best.Base.externalTokenState)

	case ActionAccept:
		// leave the stack untouched; Parse reads the head directly.
	}
}

func sumErrorCost(subtrees []Subtree) uint32 {
	var total uint32
	for _, s := range subtrees {
		total += s.ErrorCost()
	}
	return total
}

// condense merges versions whose heads have converged, prunes ambiguous
// versions compareVersionStatus finds strictly dominated, and drops the
// worst-scoring versions beyond maxVersionCount (spec §4.4 "condense").
// Each pair (j, i) with j < i is compared; a dominance verdict halts the
// clearly worse side outright rather than waiting for the hard cap.
func (p *Parser) condense(stack *Stack) {
	for i := 0; i < len(stack.versions); i++ {
		if stack.versions[i].halted {
			continue
		}
		statusI := stack.versionStatus(i)
		for j := 0; j < i; j++ {
			if stack.versions[j].halted {
				continue
			}
			statusJ := stack.versionStatus(j)

			switch compareVersionStatus(statusJ, statusI) {
			case cmpTakeLeft:
				// j dominates i outright: drop i and stop comparing it.
				stack.Halt(i)

			case cmpPreferLeft, cmpNone:
				// j is at least as good; fold i into it when their heads
				// are structurally mergeable, otherwise both survive.
				stack.Merge(j, i)

			case cmpPreferRight:
				// i edges out j but doesn't dominate it: merge if the
				// heads line up, otherwise leave both live for the next
				// round rather than discarding either.
				stack.Merge(j, i)

			case cmpTakeRight:
				// i dominates j outright: drop j, keep i.
				stack.Halt(j)
			}

			if stack.versions[i].halted {
				break
			}
		}
	}
	stack.Compact()

	for len(stack.versions) > maxVersionCount {
		worst := 0
		for i := 1; i < len(stack.versions); i++ {
			if stack.versions[i].head.errorCost > stack.versions[worst].head.errorCost {
				worst = i
			}
		}
		stack.versions = append(stack.versions[:worst], stack.versions[worst+1:]...)
	}
}

