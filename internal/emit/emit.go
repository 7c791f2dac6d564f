// Package emit lowers a type-annotated ast.Program, via its per-function
// control-flow graphs, into the typed SSA-shaped IL defined by package il.
// It is the compiler's code generator: every arithmetic, comparison,
// conversion, memory and call rule from the language's lowering table is
// applied here, against the cfg package's block/edge structure.
//
// Every BASIC variable a function can read across more than one basic
// block (locals, parameters kept live past their entry block, the FOR
// induction variable, a FUNCTION's self-assigned result, the GOSUB
// pushdown id) is modeled as a load/store against a dedicated slot in the
// same flat global vector sema assigns real GLOBALs into, rather than as
// an SSA register threaded through block arguments: the language has no
// recursion, so per-function static storage is sufficient, and it sidesteps
// needing phi nodes at CFG join points the il package has no concept of.
package emit

import (
	"sort"

	"fbc/internal/ast"
	"fbc/internal/cfg"
	"fbc/internal/diag"
	"fbc/internal/il"
	"fbc/internal/runtime"
	"fbc/internal/symtab"
	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// frame carries one function's emission state.
type frame struct {
	mod    *il.Module
	ilFn   *il.Function
	g      *cfg.CFG
	blocks map[cfg.BlockID]*il.Block

	tbl    *symtab.Table
	bag    *diag.Bag
	file   string
	fnName string // "" for the main program.
	fnSym  *symtab.FunctionSymbol
	target runtime.Target

	slots       map[symtab.Key]int // Every scalar/array-handle's flat-vector slot, including true globals.
	slotCounter *int                // Shared across every function in the module; continues past tbl.GlobalCount().

	matchIndex map[*ast.Expr]*ast.Expr // SELECT CASE match expr -> its selector expr.

	callSiteTotal map[cfg.BlockID]int // Subroutine entry block -> total GOSUB/ON GOSUB call sites reaching it.
	subSeq        map[cfg.BlockID]int // Subroutine entry block -> next call-site id to hand out.
}

// ---------------------
// ----- functions -----
// ---------------------

// Module lowers every SUB/FUNCTION declared in prog plus its main program
// body into one il.Module targeting backend target. It returns a non-nil
// error only for an internal compiler invariant violation (a panic raised
// by the il package's own operand-class checks); ordinary codegen-phase
// problems are appended to bag.
func Module(prog *ast.Program, tbl *symtab.Table, bag *diag.Bag, file string, target runtime.Target) (mod *il.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = diag.Internal("emit: %v", r)
		}
	}()

	mod = il.NewModule(file)
	for _, g := range tbl.Globals() {
		mod.Globals = append(mod.Globals, il.GlobalDecl{Name: g.Name, Slot: g.Slot, Class: g.Type.ValueClass()})
	}

	slotCounter := new(int)
	*slotCounter = tbl.GlobalCount()

	for _, d := range prog.Decls {
		if d.Kind != ast.DeclFunction && d.Kind != ast.DeclSub {
			continue
		}
		fs, ok := tbl.LookupFunction(d.Name)
		if !ok {
			bag.Errorf(diag.CodegenErr, "", file, d.Line, "internal: %s not registered in the symbol table", d.Name)
			continue
		}
		if _, err := emitFunction(mod, tbl, bag, file, target, d.Name, d, fs, d.Body, slotCounter); err != nil {
			return nil, err
		}
	}

	initCount, err := emitFunction(mod, tbl, bag, file, target, "", nil, nil, prog.Main, slotCounter)
	if err != nil {
		return nil, err
	}
	if initCount != nil {
		initCount.IVal = int64(*slotCounter)
	}
	return mod, nil
}

// emitFunction builds fn's CFG (fn == "" selects the main program) and
// lowers it into a new il.Function appended to mod. For the main program
// it returns the basic_global_init call's slot-count constant, to be
// patched to the true final count once every function's emit-time local
// slots have been allocated.
func emitFunction(mod *il.Module, tbl *symtab.Table, bag *diag.Bag, file string, target runtime.Target, fn string, decl *ast.Decl, fs *symtab.FunctionSymbol, body []*ast.Stmt, slotCounter *int) (*il.Const, error) {
	g, err := cfg.Build(fn, body)
	if err != nil {
		bag.Errorf(diag.CodegenErr, "", file, 0, "%s: %s", fn, err)
		return nil, nil
	}

	retClass, isVoid := types.W32, true
	if fs != nil && !fs.IsSub {
		retClass, isVoid = fs.Return.ValueClass(), false
	}
	name := fn
	if name == "" {
		name = "main"
	}
	ilFn := mod.CreateFunction(name, retClass, isVoid)
	ilFn.Export = fn == ""

	fr := &frame{
		mod:           mod,
		ilFn:          ilFn,
		g:             g,
		blocks:        make(map[cfg.BlockID]*il.Block, len(g.Blocks)),
		tbl:           tbl,
		bag:           bag,
		file:          file,
		fnName:        fn,
		fnSym:         fs,
		target:        target,
		slots:         make(map[symtab.Key]int),
		slotCounter:   slotCounter,
		callSiteTotal: make(map[cfg.BlockID]int),
		subSeq:        make(map[cfg.BlockID]int),
	}
	fr.matchIndex = buildMatchIndex(body)
	if decl != nil {
		for _, p := range decl.Params {
			fr.ilFn.CreateParam(p.Name, p.Type.ValueClass())
		}
	}

	for _, b := range g.Blocks {
		fr.blocks[b.ID] = ilFn.CreateBlock(b.Label)
		for _, e := range b.Edges {
			if e.Kind == cfg.Call {
				fr.callSiteTotal[e.Target]++
			}
		}
	}

	var initCount *il.Const
	if fn == "" {
		initCount = fr.lowerMainPrologue(fr.blocks[g.Entry])
	}

	for _, b := range g.Blocks {
		fr.lowerBlock(b)
	}
	return initCount, nil
}

// lowerMainPrologue emits the process and global-vector bring-up calls the
// runtime requires before any user statement executes, returning the
// basic_global_init slot-count argument for the caller to patch once the
// true final count is known.
func (fr *frame) lowerMainPrologue(entry *il.Block) *il.Const {
	entry.CreateCall(types.W32, "basic_runtime_init")
	count := fr.ilFn.CreateConstInt(types.L64, int64(*fr.slotCounter))
	entry.CreateCall(types.W32, "basic_global_init", count)
	return count
}

// buildMatchIndex walks every statement reachable from stmts (recursively
// through every nested body) and records, for each SELECT CASE arm's match
// expression, the selector expression it is implicitly compared against.
// The CFG only stores the bare match value as a CondTrue/CondFalse edge's
// Guard, so this index is how the emitter tells a SELECT CASE comparison
// apart from an ordinary boolean IF/WHILE/DO guard sharing the same edge
// shape.
func buildMatchIndex(stmts []*ast.Stmt) map[*ast.Expr]*ast.Expr {
	idx := make(map[*ast.Expr]*ast.Expr)
	var walk func([]*ast.Stmt)
	walk = func(list []*ast.Stmt) {
		for _, s := range list {
			if s.Kind == ast.Select {
				for _, c := range s.Cases {
					for _, m := range c.Matches {
						idx[m] = s.LHS
					}
					walk(c.Body)
				}
			}
			walk(s.Body)
			walk(s.Else)
			for _, c := range s.Catches {
				walk(c.Body)
			}
		}
	}
	walk(stmts)
	return idx
}

// lowerBlock lowers one CFG block's statements in source order, then its
// terminator, derived from its edge list.
func (fr *frame) lowerBlock(b *cfg.BasicBlock) {
	blk := fr.blocks[b.ID]

	if b.ID == fr.g.Exit {
		fr.lowerReturn(blk)
		return
	}

	for i, s := range b.Stmts {
		fr.lowerStmt(blk, b, s, i == len(b.Stmts)-1)
	}

	fr.lowerTerminator(blk, b)
}

// lowerReturn emits the function's single real return: a FUNCTION reads
// back whatever was last assigned to its own name (BASIC's classic
// result-by-self-assignment convention), a SUB returns void. The main
// program additionally runs the matching runtime teardown before
// returning.
func (fr *frame) lowerReturn(blk *il.Block) {
	if fr.fnName == "" {
		blk.CreateCall(types.W32, "basic_global_cleanup")
		blk.CreateCall(types.W32, "basic_runtime_cleanup")
		blk.CreateRetVoid()
		return
	}
	if fr.fnSym == nil || fr.fnSym.IsSub {
		blk.CreateRetVoid()
		return
	}
	key := symtab.Key{Func: fr.fnName, Name: fr.fnName}
	blk.CreateRet(fr.loadVar(blk, key, fr.fnSym.Return))
}

// lowerTerminator derives blk's terminator from b's CFG edges.
func (fr *frame) lowerTerminator(blk *il.Block, b *cfg.BasicBlock) {
	if blk.Terminated() {
		return
	}

	switch len(b.Edges) {
	case 0:
		fr.lowerDeadEnd(blk, b)

	case 1:
		fr.lowerSingleEdge(blk, b.Edges[0])

	default:
		fr.lowerMultiEdge(blk, b)
	}
}

// lowerSingleEdge handles the common case of exactly one outgoing edge. A
// GOSUB call site whose target subroutine has more than one call site first
// records this call's id in the pushdown slot RETURN will later dispatch
// against.
func (fr *frame) lowerSingleEdge(blk *il.Block, e cfg.Edge) {
	if e.Kind == cfg.Call {
		fr.recordGosubCallSite(blk, e.Target)
	}
	blk.CreateJump(fr.blocks[e.Target])
}

// recordGosubCallSite stores this call site's pushdown id into the target
// subroutine's pushdown slot, when that subroutine has more than one call
// site feeding its RETURN dispatch tree; a single-call-site subroutine
// needs no bookkeeping at all.
func (fr *frame) recordGosubCallSite(blk *il.Block, target cfg.BlockID) {
	if total := fr.callSiteTotal[target]; total > 1 {
		idx := fr.subSeq[target]
		fr.subSeq[target] = idx + 1
		fr.storeVar(blk, fr.pushIDKey(), pushIDType, fr.ilFn.CreateConstInt(types.W32, int64(idx)))
	}
}

// pushIDType is the descriptor backing the GOSUB pushdown-id slot: a plain
// signed w32 cell, never user-visible.
var pushIDType = types.Descriptor{Base: types.Int32, Attrs: types.Signed}

// pushIDKey names this function's single GOSUB-dispatch pushdown slot. One
// slot per function, not one per call depth, so recursive GOSUB chains into
// the same subroutine are not supported by this simplified dispatch scheme.
func (fr *frame) pushIDKey() symtab.Key {
	return symtab.Key{Func: fr.fnName, Name: "%gosub_id"}
}

// lowerDeadEnd handles a block the CFG marked terminated with no outgoing
// edge: either an END statement or a THROW no enclosing TRY in this
// function catches.
func (fr *frame) lowerDeadEnd(blk *il.Block, b *cfg.BasicBlock) {
	var last *ast.Stmt
	if len(b.Stmts) > 0 {
		last = b.Stmts[len(b.Stmts)-1]
	}
	switch {
	case last != nil && last.Kind == ast.End:
		blk.CreateCall(types.W32, "basic_end", fr.exitCode(blk, last))
		blk.CreateRetVoid()

	case last != nil && last.Kind == ast.Throw:
		blk.CreateCall(types.W32, "basic_throw", fr.exitCode(blk, last))
		blk.CreateRetVoid()

	default:
		blk.CreateRetVoid()
	}
}

// exitCode evaluates an END/THROW statement's optional code operand as an
// l64 value, defaulting to the constant 0 when none is given.
func (fr *frame) exitCode(blk *il.Block, s *ast.Stmt) il.Value {
	if len(s.Exprs) == 0 {
		return fr.ilFn.CreateConstInt(types.L64, 0)
	}
	code := s.Exprs[0]
	return fr.coerceTo(blk, fr.expr(blk, code), code.Type, i64Desc)
}

// lowerMultiEdge handles every block with 2+ outgoing edges: CondTrue/
// CondFalse pairs, Multiway chains, and multi-landing GOSUB/RETURN
// dispatch (every edge Kind == Return).
func (fr *frame) lowerMultiEdge(blk *il.Block, b *cfg.BasicBlock) {
	allReturn := true
	for _, e := range b.Edges {
		if e.Kind != cfg.Return {
			allReturn = false
			break
		}
	}
	if allReturn {
		fr.lowerGosubDispatch(blk, b)
		return
	}

	hasFallthrough := false
	for _, e := range b.Edges {
		if e.Kind == cfg.Fallthrough {
			hasFallthrough = true
			break
		}
	}
	if hasFallthrough {
		fr.lowerMultiway(blk, b)
		return
	}

	var trueEdge, falseEdge *cfg.Edge
	for i := range b.Edges {
		e := &b.Edges[i]
		switch e.Kind {
		case cfg.CondTrue:
			trueEdge = e
		case cfg.CondFalse:
			falseEdge = e
		}
	}
	if trueEdge == nil || falseEdge == nil {
		blk.CreateJump(fr.blocks[b.Edges[0].Target])
		return
	}

	var cond il.Value
	if b.Kind == cfg.LoopHeader && len(b.Stmts) > 0 && b.Stmts[len(b.Stmts)-1].Kind == ast.For {
		// A FOR header's Guard is s.ForTo, a sentinel rather than a real
		// boolean expression; forHeaderCond builds the branchless,
		// sign-of-step-aware continuation predicate directly instead.
		cond = fr.forHeaderCond(blk, b.Stmts[len(b.Stmts)-1])
	} else {
		cond = fr.lowerGuard(blk, trueEdge.Guard)
	}
	blk.CreateCondBranch(cond, fr.blocks[trueEdge.Target], fr.blocks[falseEdge.Target])
}

// lowerGuard evaluates a CondTrue/CondFalse edge's Guard expression as a
// w32 boolean. When guard is a bare SELECT CASE match value (found in
// fr.matchIndex), it's compared for equality against that arm's selector;
// otherwise guard is already a full boolean expression (IF/WHILE/DO/UNTIL).
func (fr *frame) lowerGuard(blk *il.Block, guard *ast.Expr) il.Value {
	if guard == nil {
		return fr.ilFn.CreateConstInt(types.W32, 1)
	}
	if sel, ok := fr.matchIndex[guard]; ok {
		l := fr.expr(blk, sel)
		r := fr.expr(blk, guard)
		c := types.Promote(sel.Type, guard.Type)
		return blk.CreateCompare(il.CmpEq, c.ValueClass(), fr.coerceTo(blk, l, sel.Type, c), fr.coerceTo(blk, r, guard.Type, c))
	}
	return fr.expr(blk, guard)
}

// lowerMultiway lowers an ON..GOTO/ON..GOSUB dispatch: the selector is
// compared in emission order against 1..N, falling through to the last arm
// (the out-of-range case) otherwise. ON..GOTO's arms are plain jump
// targets; ON..GOSUB's are Call edges, each routed through a one-
// instruction trampoline block that records the call site's pushdown id
// before jumping on, since CreateMultiway's targets are block references
// with no room for the store a plain GOSUB emits inline.
func (fr *frame) lowerMultiway(blk *il.Block, b *cfg.BasicBlock) {
	var guard *ast.Expr
	for _, e := range b.Edges {
		if e.Guard != nil {
			guard = e.Guard
			break
		}
	}
	selector := fr.expr(blk, guard)

	sorted := append([]cfg.Edge{}, b.Edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	targets := make([]*il.Block, 0, len(b.Edges)-1)
	var fall *il.Block
	for _, e := range sorted {
		if e.Kind == cfg.Fallthrough {
			fall = fr.blocks[e.Target]
			continue
		}
		if e.Kind == cfg.Call {
			targets = append(targets, fr.callTrampoline(e.Target))
			continue
		}
		targets = append(targets, fr.blocks[e.Target])
	}
	blk.CreateMultiway(selector, targets, fall)
}

// callTrampoline returns a fresh block that records target's pushdown id
// (when its subroutine needs one) and jumps straight through to it.
func (fr *frame) callTrampoline(target cfg.BlockID) *il.Block {
	t := fr.ilFn.CreateBlock("")
	fr.recordGosubCallSite(t, target)
	t.CreateJump(fr.blocks[target])
	return t
}

// lowerGosubDispatch lowers a RETURN statement's fan-out: a single landing
// needs no test at all, several landings are resolved by a balanced binary
// decision tree over the pushdown id GOSUB recorded on the way in.
func (fr *frame) lowerGosubDispatch(blk *il.Block, b *cfg.BasicBlock) {
	targets := make([]*il.Block, len(b.Edges))
	for i, e := range b.Edges {
		targets[i] = fr.blocks[e.Target]
	}
	if len(targets) == 1 {
		blk.CreateJump(targets[0])
		return
	}
	id := fr.loadVar(blk, fr.pushIDKey(), pushIDType)
	fr.dispatchTree(blk, id, targets)
}

// dispatchTree recursively halves the landing list, comparing id against
// the midpoint each time, until exactly one candidate remains.
func (fr *frame) dispatchTree(blk *il.Block, id il.Value, targets []*il.Block) {
	if len(targets) == 1 {
		blk.CreateJump(targets[0])
		return
	}
	mid := len(targets) / 2
	bound := fr.ilFn.CreateConstInt(types.W32, int64(mid))
	cond := blk.CreateCompare(il.CmpLt, types.W32, id, bound)
	left := fr.ilFn.CreateBlock("")
	right := fr.ilFn.CreateBlock("")
	blk.CreateCondBranch(cond, left, right)
	fr.dispatchTree(left, id, targets[:mid])
	fr.dispatchTree(right, id, targets[mid:])
}
