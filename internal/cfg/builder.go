package cfg

import (
	"fmt"

	"fbc/internal/ast"
	"fbc/internal/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// loopFrame is one entry in the builder's loop-context stack, giving
// EXIT/CONTINUE a target without threading extra parameters through every
// recursive call.
type loopFrame struct {
	header BlockID // CONTINUE target for non-FOR loops: the test block of a pre-test loop, the body block of a post-test or DO-forever loop.
	incr   BlockID // CONTINUE target for FOR (the increment block).
	exit   BlockID // EXIT target.
	isFor  bool
}

// subTable tracks, per GOSUB/ON GOSUB target line, the ordered list of
// landing blocks created for each call site reaching that target — the
// "finite set of landings per subroutine entry" computed during Phase 0
// and consumed by RETURN.
type subTable struct {
	landings map[int][]BlockID
	owner    map[*ast.Stmt]int // RETURN statement -> its subroutine's target line.

	// finallyLandings mirrors the GOSUB landing mechanism for loop
	// EXIT/CONTINUE and EXIT FUNCTION/SUB that must pass through an enclosing
	// FINALLY before reaching their real destination (GOTO and GOSUB's
	// RETURN are not routed this way): each early-exit site
	// registers a landing block (which jumps on to its true destination)
	// keyed by the owning TRY's entry block id, and the FINALLY block's
	// normal completion fans out with a Return edge to every registered
	// landing — exactly how RETURN dispatches across multiple GOSUB call
	// sites.
	finallyLandings map[BlockID][]BlockID
}

// excFrame is one entry in the builder's exception-context stack, recording
// the innermost TRY's handler table for THROW to dispatch against, plus
// the FINALLY block (if any) that early exits must route through.
type excFrame struct {
	handlers []handlerEntry
	finally  BlockID
	tryID    BlockID
	hasFin   bool
}

type handlerEntry struct {
	codes  []int // Empty means catch-all.
	target BlockID
}

// context carries every piece of ambient state the CFG builder's recursive
// routines need, threaded explicitly per statement rather than held in
// package-level variables.
type context struct {
	g        *CFG
	namer    *util.Namer
	loops    util.Stack[loopFrame]
	exc      util.Stack[excFrame]
	subs     *subTable
	jumpLbl  map[string]BlockID // Named label -> reserved block, from Phase 0.
	jumpLine map[int]BlockID    // Line number -> reserved block, from Phase 0.
	fnExit   BlockID            // EXIT FUNCTION/SUB target, reserved before the body is built.
}

// ---------------------
// ----- functions -----
// ---------------------

// Build constructs the CFG for one function body (or the main program,
// when fn == ""). It implements the Phase-0 pre-scan followed by the
// single-pass recursive descent.
func Build(fn string, stmts []*ast.Stmt) (*CFG, error) {
	g := newCFG(fn)
	entry := g.newBlock(Normal)
	g.Entry = entry.ID

	ctx := &context{
		g:        g,
		namer:    util.NewNamer(),
		subs: &subTable{
			landings:        make(map[int][]BlockID),
			owner:           make(map[*ast.Stmt]int),
			finallyLandings: make(map[BlockID][]BlockID),
		},
		jumpLbl:  make(map[string]BlockID),
		jumpLine: make(map[int]BlockID),
	}
	prescan(ctx, stmts)
	assignSubroutineOwners(ctx, stmts)

	// The exit block is reserved up front so EXIT FUNCTION/SUB can target it
	// (routed through any enclosing FINALLY) without a forward-reference
	// problem; the rest of the function body is built against it exactly
	// like any other pre-scanned jump target.
	exit := g.newBlock(Normal)
	g.Exit = exit.ID
	ctx.fnExit = exit.ID

	last, err := ctx.buildRange(stmts, entry)
	if err != nil {
		return nil, err
	}
	if !last.Terminated {
		last.addEdge(Edge{Target: exit.ID, Kind: Fallthrough})
	}
	return g, nil
}

// prescan implements Phase 0: collect every line number and label that is
// the destination of GOTO/GOSUB/ON..GOTO/ON..GOSUB and reserve a landing
// block for each at first mention, so forward references resolve
// deterministically.
func prescan(ctx *context, stmts []*ast.Stmt) {
	var walk func([]*ast.Stmt)
	reserveLine := func(line int) {
		if _, ok := ctx.jumpLine[line]; !ok {
			b := ctx.g.newBlock(Normal)
			ctx.jumpLine[line] = b.ID
			ctx.g.LineNumbers[line] = b.ID
		}
	}
	reserveLabel := func(name string) {
		if _, ok := ctx.jumpLbl[name]; !ok {
			b := ctx.g.newBlock(Normal)
			ctx.jumpLbl[name] = b.ID
			ctx.g.Labels[name] = b.ID
		}
	}
	walk = func(list []*ast.Stmt) {
		for _, s := range list {
			switch s.Kind {
			case ast.Goto, ast.Gosub:
				if s.Name != "" {
					reserveLabel(s.Name)
				} else {
					reserveLine(s.Line2)
				}
			case ast.OnGoto, ast.OnGosub:
				for _, l := range s.Targets {
					reserveLine(l)
				}
			case ast.LabelStmt:
				reserveLabel(s.Label)
				reserveLine(s.Line)
			}
			walk(s.Body)
			walk(s.Else)
			for _, c := range s.Cases {
				walk(c.Body)
			}
			for _, c := range s.Catches {
				walk(c.Body)
			}
		}
	}
	walk(stmts)
}

// assignSubroutineOwners scans the flat statement sequence in source order
// and records, for every RETURN, the nearest preceding GOSUB/ON GOSUB
// target line — i.e. the subroutine it belongs to. This assumes
// subroutines do not interleave, which holds for well-formed BASIC
// programs using line-numbered GOSUB.
func assignSubroutineOwners(ctx *context, stmts []*ast.Stmt) {
	current := -1
	var walk func([]*ast.Stmt)
	walk = func(list []*ast.Stmt) {
		for _, s := range list {
			if _, ok := ctx.jumpLine[s.Line]; ok {
				current = s.Line
			}
			if s.Kind == ast.Return {
				ctx.subs.owner[s] = current
			}
			walk(s.Body)
			walk(s.Else)
			for _, c := range s.Cases {
				walk(c.Body)
			}
			for _, c := range s.Catches {
				walk(c.Body)
			}
		}
	}
	walk(stmts)
}

// buildRange implements build_statement_range: it grows the current block
// with non-control statements and delegates control statements to
// specialized builders, returning the block through which control exits
// the range normally.
func (ctx *context) buildRange(stmts []*ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	cur := incoming
	for _, s := range stmts {
		if cur.Terminated {
			// Unreachable code after a terminator; still land jump targets
			// correctly but stop growing this block.
			if target, ok := ctx.jumpLine[s.Line]; ok {
				cur = ctx.g.Block(target)
				continue
			}
			continue
		}
		if target, ok := ctx.jumpLine[s.Line]; ok && target != cur.ID {
			// This statement is a reserved jump target: fall through into it.
			cur.addEdge(Edge{Target: target, Kind: Fallthrough})
			cur = ctx.g.Block(target)
		}
		if s.Kind == ast.LabelStmt {
			if target, ok := ctx.jumpLbl[s.Label]; ok && target != cur.ID {
				cur.addEdge(Edge{Target: target, Kind: Fallthrough})
				cur = ctx.g.Block(target)
			}
			continue
		}

		var err error
		cur, err = ctx.buildStatement(s, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// buildStatement dispatches one statement to its specialized builder (for
// control constructs) or appends it to the current block.
func (ctx *context) buildStatement(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	switch s.Kind {
	case ast.While:
		return ctx.buildWhile(s, cur)
	case ast.For:
		return ctx.buildFor(s, cur)
	case ast.Repeat:
		return ctx.buildRepeat(s, cur)
	case ast.Do:
		return ctx.buildDo(s, cur)
	case ast.If:
		return ctx.buildIf(s, cur)
	case ast.Select:
		return ctx.buildSelect(s, cur)
	case ast.Try:
		return ctx.buildTry(s, cur)
	case ast.Goto:
		return ctx.buildGoto(s, cur)
	case ast.Gosub:
		return ctx.buildGosub(s, cur)
	case ast.Return:
		return ctx.buildReturn(s, cur)
	case ast.OnGoto, ast.OnGosub:
		return ctx.buildOnJump(s, cur)
	case ast.ExitFor, ast.ExitWhile, ast.ExitDo:
		return ctx.buildExitLoop(s, cur)
	case ast.Continue:
		return ctx.buildContinue(s, cur)
	case ast.ExitFunction, ast.ExitSub:
		cur.append(s)
		ctx.routeExit(cur, ctx.fnExit, Jump)
		return cur, nil
	case ast.End:
		cur.append(s)
		cur.Terminated = true
		return cur, nil
	case ast.Throw:
		return ctx.buildThrow(s, cur)
	default:
		cur.append(s)
		return cur, nil
	}
}

// currentLoop returns the innermost enclosing loop frame, or an error if
// none exists (EXIT/CONTINUE outside a loop).
func (ctx *context) currentLoop() (loopFrame, error) {
	f, ok := ctx.loops.Peek()
	if !ok {
		return loopFrame{}, fmt.Errorf("EXIT/CONTINUE used outside of a loop")
	}
	return f, nil
}

// routeExit wires block b's departure from the construct it just finished
// building to realTarget, rewriting the edge to pass through the
// innermost enclosing FINALLY first when one is active: FINALLY is
// reached from normal completion of the body, from every handler, and
// from loop EXIT/CONTINUE and EXIT FUNCTION/SUB inside the region, all
// rewritten to jump through FINALLY before leaving it. GOTO and GOSUB's
// RETURN do not go through routeExit and leave the region without
// passing through FINALLY. This reuses the GOSUB landing/dispatch
// mechanism: a landing block that jumps on to realTarget is registered
// against the active TRY, a Call edge reaches FINALLY, and FINALLY's own
// normal completion later fans out with Return edges to every registered
// landing.
func (ctx *context) routeExit(b *BasicBlock, realTarget BlockID, direct EdgeKind) {
	frame, ok := ctx.exc.Peek()
	if !ok {
		ctx.routeExitVia(b, realTarget, direct, excFrame{})
		return
	}
	ctx.routeExitVia(b, realTarget, direct, frame)
}

// routeExitVia is routeExit's explicit-frame form, used by buildTry itself
// for the try body's and each handler's own completion edges: by the time
// those run, the frame that protected them has already been popped off
// ctx.exc (a THROW from inside a handler must not re-enter that same
// handler set), so the frame has to be passed in rather than peeked.
func (ctx *context) routeExitVia(b *BasicBlock, realTarget BlockID, direct EdgeKind, frame excFrame) {
	if b.Terminated {
		return
	}
	if !frame.hasFin {
		b.addEdge(Edge{Target: realTarget, Kind: direct})
		return
	}
	landing := ctx.g.newBlock(SubroutineLanding)
	landing.addEdge(Edge{Target: realTarget, Kind: Jump})
	ctx.subs.finallyLandings[frame.tryID] = append(ctx.subs.finallyLandings[frame.tryID], landing.ID)
	b.addEdge(Edge{Target: frame.finally, Kind: Call})
	b.Terminated = true
}
