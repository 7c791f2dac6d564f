package emit

import (
	"fbc/internal/ast"
	"fbc/internal/cfg"
	"fbc/internal/il"
	"fbc/internal/runtime"
	"fbc/internal/symtab"
	"fbc/internal/types"
)

// lowerStmt lowers one statement appended to CFG block b into blk. Several
// kinds carry no effect of their own here: their builder in package cfg
// appended them purely so the emitter could recover context at a known
// point (GOTO/GOSUB/RETURN/EXIT*/CONTINUE/ON..GOTO/ON..GOSUB/END/THROW's
// own control transfer, every WHILE/DO/REPEAT's condition statement),
// since lowerTerminator/lowerDeadEnd derive their effect straight from b's
// edges instead. SharedStmt and LabelStmt are purely sema/CFG bookkeeping
// and lower to no code.
func (fr *frame) lowerStmt(blk *il.Block, b *cfg.BasicBlock, s *ast.Stmt, isLast bool) {
	switch s.Kind {
	case ast.Let:
		fr.lowerLet(blk, s)
	case ast.Dim:
		fr.lowerDim(blk, s)
	case ast.Redim:
		fr.lowerRedim(blk, s, false)
	case ast.RedimPreserve:
		fr.lowerRedim(blk, s, true)
	case ast.Erase:
		fr.lowerErase(blk, s)
	case ast.Print:
		fr.lowerPrint(blk, s)
	case ast.Input:
		fr.lowerInput(blk, s)
	case ast.Call:
		fr.lowerCall(blk, s)
	case ast.For:
		fr.lowerForStmt(blk, b, s)
	}
}

// ----------------------------
// ----- LET / assignment -----
// ----------------------------

// lowerLet lowers LET lhs = rhs. A string-typed target goes through
// assignString for refcount bookkeeping; everything else is a plain
// coerce-then-store.
func (fr *frame) lowerLet(blk *il.Block, s *ast.Stmt) {
	if s.LHS == nil || len(s.Exprs) == 0 {
		return
	}
	rhs := s.Exprs[0]
	val := fr.coerceTo(blk, fr.expr(blk, rhs), rhs.Type, s.LHS.Type)
	if s.LHS.Type.IsString() {
		fr.assignString(blk, s.LHS, val, isAliasingRead(rhs))
		return
	}
	fr.storeLValue(blk, s.LHS, val)
}

// isAliasingRead reports whether e reads an existing variable/element/field
// rather than producing a fresh value: CONCAT and string_new_utf8 hand back
// a descriptor already at refcount 1, so only a read that hands out a
// second reference to an existing descriptor needs a matching retain.
func isAliasingRead(e *ast.Expr) bool {
	switch e.Kind {
	case ast.Var, ast.Index, ast.MemberAccess:
		return true
	default:
		return false
	}
}

// assignString stores val into a string-typed target, retaining it first
// when it aliases an existing descriptor and releasing whatever descriptor
// the target held beforehand — an uninitialized DIM'd string slot is a null
// descriptor, which string_release is expected to treat as a no-op.
func (fr *frame) assignString(blk *il.Block, target *ast.Expr, val il.Value, needsRetain bool) {
	old := fr.expr(blk, target)
	if needsRetain {
		h, _ := runtime.Lookup("string_retain")
		val = blk.CreateCall(h.Return.ValueClass(), h.Name, val)
	}
	h, _ := runtime.Lookup("string_release")
	blk.CreateCall(h.Return.ValueClass(), h.Name, old)
	fr.storeLValue(blk, target, val)
}

// storeLValue writes val into the storage target addresses: a scalar's flat
// slot, an array element's runtime-computed address, or a record field's
// offset address. Mirrors expr()'s Var/Index/MemberAccess read paths.
func (fr *frame) storeLValue(blk *il.Block, target *ast.Expr, val il.Value) {
	switch target.Kind {
	case ast.Var:
		fr.storeVar(blk, target.Entry, target.Type, val)
	case ast.Index:
		desc := fr.arrayDescriptor(blk, target)
		addr := fr.arrayElemAddr(blk, target, desc)
		blk.CreateStore(addr, val, target.Type.MemOp())
	case ast.MemberAccess:
		field := fr.resolveField(target)
		addr := fr.memberAddr(blk, target, field)
		blk.CreateStore(addr, val, field.Type.MemOp())
	default:
		panic("internal error: emit.storeLValue: unassignable expression kind")
	}
}

// -----------------------------
// ----- DIM / REDIM / ERASE ---
// -----------------------------

// lowerDim lowers a scalar DIM to a zero-initializing store; an array DIM
// packs its bound expressions into a stack buffer and asks the runtime to
// allocate a fresh descriptor, stored into the same flat slot a scalar
// would use.
func (fr *frame) lowerDim(blk *il.Block, s *ast.Stmt) {
	key := symtab.Key{Func: fr.fnName, Name: s.Name}
	if s.Rank == 0 {
		fr.storeVar(blk, key, s.Type, fr.zero(s.Type))
		return
	}
	bounds := fr.packIndices(blk, s.Exprs)
	tag := fr.ilFn.CreateConstInt(types.L64, int64(s.Type.Base))
	rank := fr.ilFn.CreateConstInt(types.L64, int64(len(s.Exprs)))
	h, _ := runtime.Lookup("array_new")
	handle := blk.CreateCall(h.Return.ValueClass(), h.Name, tag, bounds, rank)
	fr.storeVar(blk, key, ptrDesc, handle)
}

// lowerRedim reloads the array's existing descriptor handle and asks the
// runtime to resize it in place, preserving or discarding prior contents
// per preserve.
func (fr *frame) lowerRedim(blk *il.Block, s *ast.Stmt, preserve bool) {
	key := symtab.Key{Func: fr.fnName, Name: s.Name}
	handle := fr.loadVar(blk, key, ptrDesc)
	bounds := fr.packIndices(blk, s.Exprs)
	name := "array_redim"
	if preserve {
		name = "array_redim_preserve"
	}
	h, _ := runtime.Lookup(name)
	blk.CreateCall(h.Return.ValueClass(), h.Name, handle, bounds)
}

// lowerErase releases the array's backing storage through the runtime; the
// slot keeps whatever stale handle it held, since ERASE never narrows scope
// the way Go's garbage collector would need it to.
func (fr *frame) lowerErase(blk *il.Block, s *ast.Stmt) {
	key := symtab.Key{Func: fr.fnName, Name: s.Name}
	handle := fr.loadVar(blk, key, ptrDesc)
	h, _ := runtime.Lookup("array_erase")
	blk.CreateCall(h.Return.ValueClass(), h.Name, handle)
}

// -------------------
// ----- PRINT -------
// -------------------

// lowerPrint lowers every PRINT item to its type-appropriate runtime call,
// widening integers/singles to the l64/d64 width basic_print_int/double
// expect, then emits the trailing newline.
func (fr *frame) lowerPrint(blk *il.Block, s *ast.Stmt) {
	for _, a := range s.Exprs {
		v := fr.expr(blk, a)
		switch {
		case a.Type.IsString():
			h, _ := runtime.Lookup("basic_print_string")
			blk.CreateCall(h.Return.ValueClass(), h.Name, v)
		case a.Type.IsFloat():
			d := fr.coerceTo(blk, v, a.Type, types.Descriptor{Base: types.Double})
			h, _ := runtime.Lookup("basic_print_double")
			blk.CreateCall(h.Return.ValueClass(), h.Name, d)
		default:
			wide := fr.widen(blk, v, a.Type.Has(types.Signed), types.L64)
			h, _ := runtime.Lookup("basic_print_int")
			blk.CreateCall(h.Return.ValueClass(), h.Name, wide)
		}
	}
	h, _ := runtime.Lookup("basic_print_newline")
	blk.CreateCall(h.Return.ValueClass(), h.Name)
}

// -------------------
// ----- INPUT -------
// -------------------

// lowerInput reads one runtime-parsed value per target, by the target's own
// static type, and stores it through the same lvalue path LET uses.
func (fr *frame) lowerInput(blk *il.Block, s *ast.Stmt) {
	for _, t := range s.Exprs {
		switch {
		case t.Type.IsString():
			h, _ := runtime.Lookup("basic_input_string")
			v := blk.CreateCall(h.Return.ValueClass(), h.Name)
			fr.assignString(blk, t, v, false)
		case t.Type.IsFloat():
			h, _ := runtime.Lookup("basic_input_double")
			raw := blk.CreateCall(h.Return.ValueClass(), h.Name)
			fr.storeLValue(blk, t, fr.coerceTo(blk, raw, types.Descriptor{Base: types.Double}, t.Type))
		default:
			h, _ := runtime.Lookup("basic_input_int")
			raw := blk.CreateCall(h.Return.ValueClass(), h.Name)
			fr.storeLValue(blk, t, fr.coerceTo(blk, raw, i64Desc, t.Type))
		}
	}
}

// ------------------
// ----- CALL -------
// ------------------

// lowerCall lowers a SUB invocation statement: each argument is coerced to
// its declared parameter type and passed by value, except a ByRef parameter,
// which is passed the argument's own flat-vector slot address instead —
// every assignable value already lives in one, so "by reference" needs no
// machinery beyond handing out that address.
func (fr *frame) lowerCall(blk *il.Block, s *ast.Stmt) {
	fn, ok := fr.tbl.LookupFunction(s.Name)
	if !ok {
		return
	}
	args := make([]il.Value, 0, len(s.Exprs))
	for i, a := range s.Exprs {
		if i < len(fn.ParamRef) && fn.ParamRef[i] {
			args = append(args, fr.lvalueAddr(blk, a))
			continue
		}
		v := fr.expr(blk, a)
		if i < len(fn.Params) {
			v = fr.coerceTo(blk, v, a.Type, fn.Params[i])
		}
		args = append(args, v)
	}
	retClass := types.W32
	if !fn.IsSub {
		retClass = fn.Return.ValueClass()
	}
	blk.CreateCall(retClass, s.Name, args...)
}

// lvalueAddr returns the address of e's storage, for a ByRef call argument:
// a plain Var's flat-vector slot address, or an array element's
// runtime-computed address. MemberAccess addresses go through memberAddr for
// parity, though no surface syntax currently passes a field ByRef.
func (fr *frame) lvalueAddr(blk *il.Block, e *ast.Expr) il.Value {
	switch e.Kind {
	case ast.Var:
		return blk.CreateGlobalAddr(fr.slotOf(e.Entry, e.Type))
	case ast.Index:
		desc := fr.arrayDescriptor(blk, e)
		return fr.arrayElemAddr(blk, e, desc)
	case ast.MemberAccess:
		field := fr.resolveField(e)
		return fr.memberAddr(blk, e, field)
	default:
		panic("internal error: emit.lvalueAddr: expression has no address")
	}
}

// -----------------
// ----- FOR -------
// -----------------

// lowerForStmt dispatches the FOR statement's three occurrences (init,
// header, increment) by the CFG block they were appended to; the header's
// own comparison is built separately by forHeaderCond, called directly from
// the terminator lowering rather than from here.
func (fr *frame) lowerForStmt(blk *il.Block, b *cfg.BasicBlock, s *ast.Stmt) {
	switch b.Kind {
	case cfg.LoopIncrement:
		fr.lowerForIncrement(blk, s)
	default:
		if b.Kind != cfg.LoopHeader {
			fr.lowerForInit(blk, s)
		}
	}
}

// lowerForInit evaluates FROM/TO/STEP once, storing the induction variable
// and two hidden per-loop slots (limit, step) the header and increment
// blocks read back on every iteration — BASIC fixes a FOR loop's bound and
// step at entry, even if the body later assigns to the variables that
// produced them.
func (fr *frame) lowerForInit(blk *il.Block, s *ast.Stmt) {
	sym, key, ok := fr.tbl.LookupVariable(fr.fnName, s.ForVar)
	if !ok {
		return
	}
	typ := sym.Type

	from := fr.coerceTo(blk, fr.expr(blk, s.ForFrom), s.ForFrom.Type, typ)
	fr.storeVar(blk, key, typ, from)

	to := fr.coerceTo(blk, fr.expr(blk, s.ForTo), s.ForTo.Type, typ)
	fr.storeVar(blk, fr.forLimitKey(s.ForVar), typ, to)

	var step il.Value
	if s.ForStep != nil {
		step = fr.coerceTo(blk, fr.expr(blk, s.ForStep), s.ForStep.Type, typ)
	} else {
		one := fr.ilFn.CreateConstInt(types.W32, 1)
		oneDesc := types.Descriptor{Base: types.Int32, Attrs: types.Signed}
		step = fr.coerceTo(blk, one, oneDesc, typ)
	}
	fr.storeVar(blk, fr.forStepKey(s.ForVar), typ, step)
}

// lowerForIncrement adds the cached step back onto the induction variable.
func (fr *frame) lowerForIncrement(blk *il.Block, s *ast.Stmt) {
	sym, key, ok := fr.tbl.LookupVariable(fr.fnName, s.ForVar)
	if !ok {
		return
	}
	typ := sym.Type
	i := fr.loadVar(blk, key, typ)
	step := fr.loadVar(blk, fr.forStepKey(s.ForVar), typ)
	fr.storeVar(blk, key, typ, blk.CreateAdd(typ.ValueClass(), i, step))
}

// forHeaderCond builds the branchless, sign-of-step-aware continuation test
// sign(step) * (limit - i) >= 0: when step is positive this reduces to
// i <= limit, when negative to i >= limit, and STEP 0 degenerates to an
// unconditional true (an infinite loop, left to the program's own EXIT FOR
// to break, matching plain BASIC's STEP 0 behavior).
func (fr *frame) forHeaderCond(blk *il.Block, s *ast.Stmt) il.Value {
	sym, key, ok := fr.tbl.LookupVariable(fr.fnName, s.ForVar)
	if !ok {
		return fr.ilFn.CreateConstInt(types.W32, 0)
	}
	typ := sym.Type
	class := typ.ValueClass()

	i := fr.loadVar(blk, key, typ)
	limit := fr.loadVar(blk, fr.forLimitKey(s.ForVar), typ)
	step := fr.loadVar(blk, fr.forStepKey(s.ForVar), typ)
	zero := fr.zero(typ)

	boolDesc := types.Descriptor{Base: types.Int32, Attrs: types.Signed}
	gt := fr.coerceTo(blk, blk.CreateCompare(il.CmpGt, class, step, zero), boolDesc, typ)
	lt := fr.coerceTo(blk, blk.CreateCompare(il.CmpLt, class, step, zero), boolDesc, typ)
	signStep := blk.CreateSub(class, gt, lt)

	diff := blk.CreateSub(class, limit, i)
	product := blk.CreateMul(class, diff, signStep)
	return blk.CreateCompare(il.CmpGe, class, product, zero)
}

// forLimitKey and forStepKey name a FOR loop's hidden per-induction-variable
// bound/step slots. Keyed by variable name rather than by source position,
// matching every other loop with the same induction variable reusing the
// same flat-vector slot once the first loop using it has finished.
func (fr *frame) forLimitKey(forVar string) symtab.Key {
	return symtab.Key{Func: fr.fnName, Name: "%for_limit_" + forVar}
}

func (fr *frame) forStepKey(forVar string) symtab.Key {
	return symtab.Key{Func: fr.fnName, Name: "%for_step_" + forVar}
}
