package cfg

import "fbc/internal/ast"

// buildWhile implements build_while: header tests the condition, body
// loops back to header, CondFalse leaves to exit.
func (ctx *context) buildWhile(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	header := ctx.g.newBlock(LoopHeader)
	body := ctx.g.newBlock(LoopBody)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: header.ID, Kind: Fallthrough})
	header.append(condStmt(s))
	header.addEdge(Edge{Target: body.ID, Kind: CondTrue, Guard: condExpr(s)})
	header.addEdge(Edge{Target: exit.ID, Kind: CondFalse, Guard: condExpr(s)})

	ctx.loops.Push(loopFrame{header: header.ID, incr: header.ID, exit: exit.ID})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	if !last.Terminated {
		last.addEdge(Edge{Target: header.ID, Kind: Jump})
	}
	return exit, nil
}

// buildFor implements build_for: init materializes induction/limit/step
// temporaries once; header re-loads the induction variable and compares
// against the limit with a sign-of-step-aware, branchless predicate;
// increment adds step and jumps back to header.
func (ctx *context) buildFor(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	init := ctx.g.newBlock(Normal)
	header := ctx.g.newBlock(LoopHeader)
	body := ctx.g.newBlock(LoopBody)
	incr := ctx.g.newBlock(LoopIncrement)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: init.ID, Kind: Fallthrough})
	init.append(s) // FOR statement itself carries ForVar/ForFrom/ForTo/ForStep; the emitter lowers init here.
	init.addEdge(Edge{Target: header.ID, Kind: Fallthrough})

	// The header's guard is the FOR statement itself; the emitter recognizes
	// BlockKind == LoopHeader with the owning FOR statement as last statement
	// and lowers the branchless, sign-of-step-aware predicate described in
	// build_for below.
	header.append(s)
	header.addEdge(Edge{Target: body.ID, Kind: CondTrue, Guard: s.ForTo})
	header.addEdge(Edge{Target: exit.ID, Kind: CondFalse, Guard: s.ForTo})

	ctx.loops.Push(loopFrame{header: header.ID, incr: incr.ID, exit: exit.ID, isFor: true})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	if !last.Terminated {
		last.addEdge(Edge{Target: incr.ID, Kind: Fallthrough})
	}
	incr.append(s)
	incr.addEdge(Edge{Target: header.ID, Kind: Jump})

	return exit, nil
}

// buildRepeat implements build_repeat (DO ... LOOP UNTIL): body runs
// first, condition block at the end jumps back to body when false, to
// exit when true.
func (ctx *context) buildRepeat(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	body := ctx.g.newBlock(LoopBody)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: body.ID, Kind: Fallthrough})

	ctx.loops.Push(loopFrame{header: body.ID, incr: body.ID, exit: exit.ID})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	test := ctx.g.newBlock(Normal)
	if !last.Terminated {
		last.addEdge(Edge{Target: test.ID, Kind: Fallthrough})
	}
	test.append(condStmt(s))
	// UNTIL never negates the guard in IL; the edges are swapped instead.
	test.addEdge(Edge{Target: exit.ID, Kind: CondTrue, Guard: condExpr(s)})
	test.addEdge(Edge{Target: body.ID, Kind: CondFalse, Guard: condExpr(s)})

	return exit, nil
}

// buildDo implements build_do's five DO/LOOP variants by choosing a pre-
// or post-test block placement and mapping the true/false edges according
// to DoTestKind. UNTIL is encoded by swapping which edge leads to the body
// versus the exit, never by negating the condition.
func (ctx *context) buildDo(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	switch s.DoTest {
	case ast.DoPreWhile, ast.DoPreUntil:
		return ctx.buildDoPreTest(s, incoming)
	case ast.DoPostWhile, ast.DoPostUntil:
		return ctx.buildDoPostTest(s, incoming)
	default: // DoForever: only EXIT DO can leave.
		return ctx.buildDoForever(s, incoming)
	}
}

func (ctx *context) buildDoPreTest(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	header := ctx.g.newBlock(LoopHeader)
	body := ctx.g.newBlock(LoopBody)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: header.ID, Kind: Fallthrough})
	header.append(condStmt(s))
	bodyEdge, exitEdge := CondTrue, CondFalse
	if s.DoTest == ast.DoPreUntil {
		bodyEdge, exitEdge = CondFalse, CondTrue
	}
	header.addEdge(Edge{Target: body.ID, Kind: bodyEdge, Guard: condExpr(s)})
	header.addEdge(Edge{Target: exit.ID, Kind: exitEdge, Guard: condExpr(s)})

	ctx.loops.Push(loopFrame{header: header.ID, incr: header.ID, exit: exit.ID})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	if !last.Terminated {
		last.addEdge(Edge{Target: header.ID, Kind: Jump})
	}
	return exit, nil
}

func (ctx *context) buildDoPostTest(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	body := ctx.g.newBlock(LoopBody)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: body.ID, Kind: Fallthrough})

	ctx.loops.Push(loopFrame{header: body.ID, incr: body.ID, exit: exit.ID})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	test := ctx.g.newBlock(Normal)
	if !last.Terminated {
		last.addEdge(Edge{Target: test.ID, Kind: Fallthrough})
	}
	test.append(condStmt(s))
	bodyEdge, exitEdge := CondTrue, CondFalse
	if s.DoTest == ast.DoPostUntil {
		bodyEdge, exitEdge = CondFalse, CondTrue
	}
	test.addEdge(Edge{Target: body.ID, Kind: bodyEdge, Guard: condExpr(s)})
	test.addEdge(Edge{Target: exit.ID, Kind: exitEdge, Guard: condExpr(s)})

	return exit, nil
}

func (ctx *context) buildDoForever(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	body := ctx.g.newBlock(LoopBody)
	exit := ctx.g.newBlock(LoopExit)

	incoming.addEdge(Edge{Target: body.ID, Kind: Fallthrough})

	ctx.loops.Push(loopFrame{header: body.ID, incr: body.ID, exit: exit.ID})
	last, err := ctx.buildRange(s.Body, body)
	ctx.loops.Pop()
	if err != nil {
		return nil, err
	}
	if !last.Terminated {
		// Explicit self-loop: allowed only for WHILE 1/DO forever.
		last.addEdge(Edge{Target: body.ID, Kind: Jump})
	}
	return exit, nil
}

// buildExitLoop implements EXIT FOR/WHILE/DO: jump to the innermost
// matching loop's exit block, routed through an enclosing FINALLY first
// when one is active.
func (ctx *context) buildExitLoop(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	f, err := ctx.currentLoop()
	if err != nil {
		return nil, err
	}
	cur.append(s)
	ctx.routeExit(cur, f.exit, Jump)
	return cur, nil
}

// buildContinue implements CONTINUE: jump to the corresponding increment
// (FOR) or header (WHILE/DO/REPEAT) block, routed through an enclosing
// FINALLY first when one is active.
func (ctx *context) buildContinue(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	f, err := ctx.currentLoop()
	if err != nil {
		return nil, err
	}
	cur.append(s)
	target := f.header
	if f.isFor {
		target = f.incr
	}
	ctx.routeExit(cur, target, Jump)
	return cur, nil
}

// condStmt and condExpr locate the loop-controlling expression carried by
// a WHILE/DO/REPEAT statement, stored on LHS by convention.
func condStmt(s *ast.Stmt) *ast.Stmt { return s }
func condExpr(s *ast.Stmt) *ast.Expr { return s.LHS }
