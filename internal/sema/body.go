package sema

import (
	"sync"

	"fbc/internal/ast"
	"fbc/internal/diag"
	"fbc/internal/symtab"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// loopKind distinguishes a FOR loop's CONTINUE/EXIT target from every other
// loop shape, since EXIT FOR is rejected inside a WHILE/DO and vice versa.
type loopKind int

const (
	loopFor loopKind = iota
	loopOther
)

// bodyCtx carries the per-function state pass 2 threads explicitly through
// its recursive walk: the owning function's name (for symtab.Key lookups),
// a loop-kind stack for EXIT/CONTINUE validation, a try-nesting depth, and
// the set of line numbers/labels this function defines, for resolving
// GOTO/GOSUB/ON..GOTO/ON..GOSUB targets.
type bodyCtx struct {
	fn      string
	tbl     *symtab.Table
	bag     *diag.Bag
	file    string
	loops   []loopKind
	tries   int
	targets map[int]bool
	labels  map[string]bool
}

// ---------------------
// ----- functions -----
// ---------------------

// walkFunctionBodies implements pass 2: Dim/Redim/Erase/Shared processing,
// loop/try nesting validation and jump-target resolution, one goroutine per
// function bounded by threads — grounded on the teacher's ir.Optimise
// worker-pool shape, since declaration collection (pass 1) has already
// finished single-threaded and each function's body touches only its own
// symtab keys.
func walkFunctionBodies(funcs []function, tbl *symtab.Table, bag *diag.Bag, file string, threads int) {
	if threads < 1 {
		threads = 1
	}
	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	for _, f := range funcs {
		f := f
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			walkOneFunction(f, tbl, bag, file)
		}()
	}
	wg.Wait()
}

func walkOneFunction(f function, tbl *symtab.Table, bag *diag.Bag, file string) {
	ctx := &bodyCtx{fn: f.name, tbl: tbl, bag: bag, file: file, targets: map[int]bool{}, labels: map[string]bool{}}

	if f.decl != nil {
		for _, p := range f.decl.Params {
			class := symtab.Parameter
			if p.Rank > 0 {
				if _, err := tbl.DeclareArray(f.name, p.Name, p.Type, p.Rank, class); err != nil {
					bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, f.decl.Line, "%s", err)
				}
				continue
			}
			if _, err := tbl.DeclareLocal(f.name, p.Name, p.Type, class); err != nil {
				bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, f.decl.Line, "%s", err)
			}
		}
	}

	collectTargets(ctx, f.body)
	ctx.walkRange(f.body)
}

// collectTargets pre-walks f's body recording every line number and label
// it defines, so GOTO/GOSUB/ON..GOTO/ON..GOSUB can be validated against a
// function-local target set before the CFG builder runs.
func collectTargets(ctx *bodyCtx, stmts []*ast.Stmt) {
	for _, s := range stmts {
		ctx.targets[s.Line] = true
		if s.Kind == ast.LabelStmt {
			ctx.labels[s.Label] = true
		}
		collectTargets(ctx, s.Body)
		collectTargets(ctx, s.Else)
		for _, c := range s.Cases {
			collectTargets(ctx, c.Body)
		}
		for _, c := range s.Catches {
			collectTargets(ctx, c.Body)
		}
	}
}

func (ctx *bodyCtx) walkRange(stmts []*ast.Stmt) {
	for _, s := range stmts {
		ctx.walkStmt(s)
	}
}

func (ctx *bodyCtx) walkStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.Dim:
		if s.Rank > 0 {
			if _, err := ctx.tbl.DeclareArray(ctx.fn, s.Name, s.Type, s.Rank, symtab.Local); err != nil {
				ctx.bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, ctx.file, s.Line, "%s", err)
			}
			return
		}
		if _, err := ctx.tbl.DeclareLocal(ctx.fn, s.Name, s.Type, symtab.Local); err != nil {
			ctx.bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, ctx.file, s.Line, "%s", err)
		}

	case ast.Redim, ast.RedimPreserve, ast.Erase:
		if _, ok := ctx.tbl.LookupArray(ctx.fn, s.Name); !ok {
			ctx.bag.Errorf(diag.SemanticErr, diag.UnresolvedReference, ctx.file, s.Line,
				"%s: no such array %q", s.Kind, s.Name)
		}

	case ast.SharedStmt:
		if err := ctx.tbl.Shared(ctx.fn, s.Name); err != nil {
			ctx.bag.Errorf(diag.SemanticErr, diag.UnresolvedReference, ctx.file, s.Line, "%s", err)
		}

	case ast.For:
		ctx.walkFor(s)
	case ast.While, ast.Do, ast.Repeat:
		ctx.loops = append(ctx.loops, loopOther)
		ctx.walkRange(s.Body)
		ctx.walkRange(s.Else)
		ctx.loops = ctx.loops[:len(ctx.loops)-1]

	case ast.If:
		ctx.walkRange(s.Body)
		ctx.walkRange(s.Else)

	case ast.Select:
		for _, c := range s.Cases {
			ctx.walkRange(c.Body)
		}

	case ast.Try:
		ctx.tries++
		ctx.walkRange(s.Body)
		for _, c := range s.Catches {
			ctx.walkRange(c.Body)
		}
		ctx.walkRange(s.Else)
		ctx.tries--

	case ast.ExitFor:
		ctx.checkExit(s, loopFor)
	case ast.ExitWhile, ast.ExitDo:
		ctx.checkExit(s, loopOther)
	case ast.Continue:
		if len(ctx.loops) == 0 {
			ctx.bag.Errorf(diag.SemanticErr, diag.ExitOutsideLoop, ctx.file, s.Line, "CONTINUE outside of a loop")
		}

	case ast.Goto, ast.Gosub:
		ctx.checkJumpTarget(s, s.Name, s.Line2)

	case ast.OnGoto, ast.OnGosub:
		for _, line := range s.Targets {
			if !ctx.targets[line] {
				ctx.bag.Errorf(diag.SemanticErr, diag.BadJumpTarget, ctx.file, s.Line,
					"%s: no such line %d in this scope", s.Kind, line)
			}
		}
	}
}

// walkFor registers the induction variable for the loop body's duration,
// shadowing (not colliding with) any existing binding of the same name in
// this function scope, then restores the prior binding on exit.
func (ctx *bodyCtx) walkFor(s *ast.Stmt) {
	if s.ForVar == "" {
		ctx.bag.Errorf(diag.SemanticErr, diag.InvalidForPairing, ctx.file, s.Line, "FOR without an induction variable")
		return
	}

	prev, prevKey, hadPrev := ctx.tbl.LookupVariable(ctx.fn, s.ForVar)
	if hadPrev && prevKey.Func == ctx.fn {
		ctx.tbl.UndeclareLocal(ctx.fn, s.ForVar)
	} else {
		hadPrev = false
	}

	typ := s.Type
	if typ.Base == 0 && s.ForFrom != nil {
		typ = s.ForFrom.Type
	}
	if _, err := ctx.tbl.DeclareLocal(ctx.fn, s.ForVar, typ, symtab.ForIndex); err != nil {
		ctx.bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, ctx.file, s.Line, "%s", err)
	}

	ctx.loops = append(ctx.loops, loopFor)
	ctx.walkRange(s.Body)
	ctx.loops = ctx.loops[:len(ctx.loops)-1]

	ctx.tbl.UndeclareLocal(ctx.fn, s.ForVar)
	if hadPrev {
		_, _ = ctx.tbl.DeclareLocal(ctx.fn, s.ForVar, prev.Type, prev.Class)
	}
}

func (ctx *bodyCtx) checkExit(s *ast.Stmt, want loopKind) {
	if len(ctx.loops) == 0 || ctx.loops[len(ctx.loops)-1] != want {
		ctx.bag.Errorf(diag.SemanticErr, diag.ExitOutsideLoop, ctx.file, s.Line, "%s outside of a matching loop", s.Kind)
		return
	}
}

func (ctx *bodyCtx) checkJumpTarget(s *ast.Stmt, name string, line int) {
	if name != "" {
		if !ctx.labels[name] {
			ctx.bag.Errorf(diag.SemanticErr, diag.BadJumpTarget, ctx.file, s.Line, "%s %s: no such label in this scope", s.Kind, name)
		}
		return
	}
	if !ctx.targets[line] {
		ctx.bag.Errorf(diag.SemanticErr, diag.BadJumpTarget, ctx.file, s.Line, "%s: no such line %d in this scope", s.Kind, line)
	}
}
