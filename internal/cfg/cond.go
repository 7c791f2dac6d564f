package cfg

import "fbc/internal/ast"

// buildIf implements build_if_multiline and build_if_single_line: for each
// THEN/ELSEIF/ELSE arm, create a block, wire the chain of condition blocks
// with CondTrue -> arm and CondFalse -> next condition (or ELSE/join), and
// recursively build each arm's body into a single join block. When both
// arms of a single-line IF terminate, no join block is allocated.
func (ctx *context) buildIf(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	thenBlk := ctx.g.newBlock(IfThen)
	incoming.append(s)
	incoming.addEdge(Edge{Target: thenBlk.ID, Kind: CondTrue, Guard: s.LHS})

	thenLast, err := ctx.buildRange(s.Body, thenBlk)
	if err != nil {
		return nil, err
	}

	if len(s.Else) == 0 {
		join := ctx.g.newBlock(IfJoin)
		incoming.addEdge(Edge{Target: join.ID, Kind: CondFalse, Guard: s.LHS})
		if !thenLast.Terminated {
			thenLast.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
		}
		if thenLast.Terminated {
			// Degenerate join with a single predecessor is still valid: the
			// CondFalse edge from incoming keeps it reachable.
		}
		return join, nil
	}

	elseBlk := ctx.g.newBlock(IfElse)
	incoming.addEdge(Edge{Target: elseBlk.ID, Kind: CondFalse, Guard: s.LHS})
	elseLast, err := ctx.buildRange(s.Else, elseBlk)
	if err != nil {
		return nil, err
	}

	if thenLast.Terminated && elseLast.Terminated {
		unreachable := ctx.g.newBlock(Unreachable)
		unreachable.Terminated = true // Both arms terminate; nothing falls through here.
		return unreachable, nil
	}

	join := ctx.g.newBlock(IfJoin)
	if !thenLast.Terminated {
		thenLast.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
	}
	if !elseLast.Terminated {
		elseLast.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
	}
	return join, nil
}

// buildSelect implements build_select: a chain of comparison blocks, each
// with CondTrue -> case body and CondFalse -> next case; CASE ELSE or an
// implicit otherwise-arm becomes the last link. All arms join at a single
// exit block.
func (ctx *context) buildSelect(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	join := ctx.g.newBlock(SelectJoin)
	incoming.append(s)
	cur := incoming
	hasElse := false

	for _, c := range s.Cases {
		if c.IsElse {
			hasElse = true
			caseBlk := ctx.g.newBlock(SelectCase)
			cur.addEdge(Edge{Target: caseBlk.ID, Kind: Fallthrough})
			last, err := ctx.buildRange(c.Body, caseBlk)
			if err != nil {
				return nil, err
			}
			if !last.Terminated {
				last.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
			}
			continue
		}

		caseBlk := ctx.g.newBlock(SelectCase)
		nextBlk := ctx.g.newBlock(Normal)

		// A multi-match arm (CASE 1, 2, 3) is an OR of equality tests, not
		// one block with several CondTrue edges: each match value gets its
		// own comparison block, so every conditional block still carries
		// exactly one CondTrue and one CondFalse edge. Only the last
		// comparison's CondFalse leaves the arm; every earlier one's
		// CondFalse falls through to the next match's comparison block.
		for i, m := range c.Matches {
			cmpBlk := ctx.g.newBlock(Normal)
			cur.addEdge(Edge{Target: cmpBlk.ID, Kind: Fallthrough})
			cmpBlk.addEdge(Edge{Target: caseBlk.ID, Kind: CondTrue, Guard: m})
			if i == len(c.Matches)-1 {
				cmpBlk.addEdge(Edge{Target: nextBlk.ID, Kind: CondFalse})
			} else {
				next := ctx.g.newBlock(Normal)
				cmpBlk.addEdge(Edge{Target: next.ID, Kind: CondFalse})
				cur = next
			}
		}

		last, err := ctx.buildRange(c.Body, caseBlk)
		if err != nil {
			return nil, err
		}
		if !last.Terminated {
			last.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
		}
		cur = nextBlk
	}
	if !hasElse && !cur.Terminated {
		cur.addEdge(Edge{Target: join.ID, Kind: Fallthrough})
	}
	return join, nil
}
