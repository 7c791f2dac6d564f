package cfg

import "fbc/internal/ast"

// buildTry implements build_try: a try_body, one handler block per CATCH
// code-list, an optional finally block, and a single exit. Normal
// completion of the body, every handler, and any nested loop EXIT/CONTINUE
// or function EXIT inside the region are all rewritten to jump through
// FINALLY before leaving, when a FINALLY arm is present (GOTO and GOSUB's
// RETURN are not rewritten and bypass FINALLY) — using the same landing/fan-out mechanism GOSUB uses for
// RETURN: each completion point registers a landing for its true
// destination against this TRY, and FINALLY's own normal completion emits
// a Return edge to every registered landing. The emitter resolves which
// landing applies at run time, the same as it does for GOSUB.
func (ctx *context) buildTry(s *ast.Stmt, incoming *BasicBlock) (*BasicBlock, error) {
	tryBlk := ctx.g.newBlock(TryBody)
	incoming.addEdge(Edge{Target: tryBlk.ID, Kind: Fallthrough})

	join := ctx.g.newBlock(IfJoin)

	var finallyBlk *BasicBlock
	hasFinally := len(s.Else) > 0
	if hasFinally {
		finallyBlk = ctx.g.newBlock(Finally)
	}

	frame := excFrame{hasFin: hasFinally, tryID: tryBlk.ID}
	if hasFinally {
		frame.finally = finallyBlk.ID
	}
	for _, c := range s.Catches {
		h := ctx.g.newBlock(CatchHandler)
		frame.handlers = append(frame.handlers, handlerEntry{codes: c.Codes, target: h.ID})
	}

	ctx.exc.Push(frame)
	tryLast, err := ctx.buildRange(s.Body, tryBlk)
	ctx.exc.Pop()
	if err != nil {
		return nil, err
	}
	// The try body's own frame has already been popped, so its completion
	// edge is routed against it explicitly rather than whatever (if any)
	// outer frame ctx.exc now exposes.
	ctx.routeExitVia(tryLast, join.ID, Fallthrough, frame)

	// Catch handler bodies are not protected by this TRY's own handlers (a
	// THROW inside a handler propagates outward), but early exits from
	// within them must still pass through this TRY's FINALLY, so the
	// active frame keeps hasFin/finally/tryID but drops the handler list.
	handlerFrame := excFrame{hasFin: hasFinally, finally: frame.finally, tryID: frame.tryID}
	for i, c := range s.Catches {
		h := ctx.g.Block(frame.handlers[i].target)
		ctx.exc.Push(handlerFrame)
		last, err := ctx.buildRange(c.Body, h)
		ctx.exc.Pop()
		if err != nil {
			return nil, err
		}
		ctx.routeExitVia(last, join.ID, Fallthrough, handlerFrame)
	}

	if hasFinally {
		// FINALLY itself runs outside its own protection; ctx.exc is back to
		// whatever enclosing frame existed before this TRY, which is correct.
		finLast, err := ctx.buildRange(s.Else, finallyBlk)
		if err != nil {
			return nil, err
		}
		if !finLast.Terminated {
			for _, landing := range ctx.subs.finallyLandings[tryBlk.ID] {
				finLast.addEdge(Edge{Target: landing, Kind: Return})
			}
			finLast.Terminated = true
		}
	}

	return join, nil
}
