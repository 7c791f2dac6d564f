package cfg

import "fbc/internal/ast"

// buildGoto resolves a GOTO name|line to a block via the pre-scanned
// target set and ends the current block with a Jump edge.
func (ctx *context) buildGoto(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	target, ok := ctx.resolveJumpTarget(s)
	if !ok {
		return nil, diagBadJumpTarget(s)
	}
	cur.append(s)
	cur.addEdge(Edge{Target: target, Kind: Jump})
	cur.Terminated = true
	return cur, nil
}

// buildGosub pushes a SubroutineLanding block for the statement
// immediately following the GOSUB, registers it against the target's
// landing list (computed during Phase 0/assignSubroutineOwners), and
// emits a Call edge to the target. Building then continues in the new
// landing block.
func (ctx *context) buildGosub(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	target, ok := ctx.resolveJumpTarget(s)
	if !ok {
		return nil, diagBadJumpTarget(s)
	}
	cur.append(s)
	cur.addEdge(Edge{Target: target, Kind: Call})
	cur.Terminated = true

	landing := ctx.g.newBlock(SubroutineLanding)
	line := s.Line2
	if s.Name != "" {
		// Resolve the named label back to its line number for landing bookkeeping.
		line = targetLine(ctx, target)
	}
	ctx.subs.landings[line] = append(ctx.subs.landings[line], landing.ID)
	return landing, nil
}

// buildReturn emits a Return edge to every landing in the owning
// subroutine's landing table; nothing is popped. When a subroutine has
// several call sites, every registered landing receives a Return edge: the actual
// landing chosen at run time is resolved by the emitter's pushdown id
// dispatch, not by the CFG, which only records the possible
// targets.
func (ctx *context) buildReturn(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	cur.append(s)
	owner, ok := ctx.subs.owner[s]
	if !ok || owner < 0 {
		return nil, diagReturnOutsideGosub(s)
	}
	for _, landing := range ctx.subs.landings[owner] {
		cur.addEdge(Edge{Target: landing, Kind: Return})
	}
	cur.Terminated = true
	return cur, nil
}

// buildOnJump implements ON..GOTO/ON..GOSUB: N Multiway edges guarded by
// `selector == i+1`, plus a fallthrough edge for out-of-range indices.
func (ctx *context) buildOnJump(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	cur.append(s)
	fallthroughBlk := ctx.g.newBlock(Normal)

	kind := Jump
	if s.Kind == ast.OnGosub {
		kind = Call
	}
	var selector *ast.Expr
	if len(s.Exprs) > 0 {
		selector = s.Exprs[0]
	}
	for i, line := range s.Targets {
		target, ok := ctx.jumpLine[line]
		if !ok {
			return nil, diagBadJumpTarget(s)
		}
		cur.addEdge(Edge{Target: target, Kind: kindOrMultiway(kind, i), Guard: selector, Index: i})
	}
	cur.addEdge(Edge{Target: fallthroughBlk.ID, Kind: Fallthrough})

	if s.Kind != ast.OnGosub {
		cur.Terminated = true
		return fallthroughBlk, nil
	}

	// ON..GOSUB: each call site needs its own landing, all continuing at the
	// same fallthrough point once any subroutine returns.
	for _, line := range s.Targets {
		landing := ctx.g.newBlock(SubroutineLanding)
		ctx.subs.landings[line] = append(ctx.subs.landings[line], landing.ID)
		landing.addEdge(Edge{Target: fallthroughBlk.ID, Kind: Fallthrough})
	}
	cur.Terminated = true
	return fallthroughBlk, nil
}

// kindOrMultiway chooses Multiway for GOTO-shaped ON statements (each arm
// is a distinct selector value) while Call edges from ON GOSUB keep their
// own kind — the emitter tells them apart by Index plus EdgeKind.
func kindOrMultiway(base EdgeKind, idx int) EdgeKind {
	if base == Jump {
		return Multiway
	}
	return base
}

// buildThrow marks the current block terminated with an Exception edge to
// the nearest matching handler. A THROW whose code doesn't match any of the
// innermost TRY's CATCH lists isn't necessarily unhandled: it must keep
// looking outward through every enclosing TRY, since an outer handler (or a
// catch-all) may still apply. Only once every frame on the stack has been
// checked does it fall back to propagating out of the function entirely.
func (ctx *context) buildThrow(s *ast.Stmt, cur *BasicBlock) (*BasicBlock, error) {
	cur.append(s)
	code := 0
	if len(s.Exprs) > 0 && s.Exprs[0].Kind == ast.IntLit {
		code = int(s.Exprs[0].IVal)
	}
	for _, frame := range ctx.exc.Frames() {
		for _, h := range frame.handlers {
			if matchesCode(h.codes, code) {
				cur.addEdge(Edge{Target: h.target, Kind: Exception})
				cur.Terminated = true
				return cur, nil
			}
		}
	}
	// No matching handler anywhere on the enclosing TRY stack: propagate
	// out of the function (modeled as a terminated block with no outgoing
	// edge). The emitter lowers this to basic_throw(code), which either
	// reaches a handler further up the call stack at run time or ends the
	// program with exit code == code.
	cur.Terminated = true
	return cur, nil
}

func matchesCode(codes []int, code int) bool {
	if len(codes) == 0 {
		return true // catch-all
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// resolveJumpTarget resolves a GOTO/GOSUB statement's destination, by
// label name if given, otherwise by line number.
func (ctx *context) resolveJumpTarget(s *ast.Stmt) (BlockID, bool) {
	if s.Name != "" {
		id, ok := ctx.jumpLbl[s.Name]
		return id, ok
	}
	id, ok := ctx.jumpLine[s.Line2]
	return id, ok
}

// targetLine recovers the source line number a resolved label-named jump
// target was reserved for, by reverse lookup in the CFG's line table.
func targetLine(ctx *context, target BlockID) int {
	for line, id := range ctx.g.LineNumbers {
		if id == target {
			return line
		}
	}
	return -1
}
