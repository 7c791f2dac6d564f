package emit

import (
	"fbc/internal/ast"
	"fbc/internal/il"
	"fbc/internal/runtime"
	"fbc/internal/symtab"
	"fbc/internal/types"
)

// expr lowers e, already type-annotated by the semantic analyzer, into a
// value the caller's block can reference.
func (fr *frame) expr(blk *il.Block, e *ast.Expr) il.Value {
	switch e.Kind {
	case ast.IntLit:
		return fr.ilFn.CreateConstInt(e.Type.ValueClass(), e.IVal)
	case ast.FloatLit:
		return fr.ilFn.CreateConstFloat(e.Type.ValueClass(), e.FVal)
	case ast.StringLit:
		sym := fr.mod.InternString(e.SVal)
		return blk.CreateDataAddr(sym)

	case ast.Var:
		return fr.loadVar(blk, e.Entry, e.Type)

	case ast.Index:
		return fr.indexLoad(blk, e)

	case ast.MemberAccess:
		return fr.memberLoad(blk, e)

	case ast.Unary:
		return fr.unary(blk, e)

	case ast.Binary:
		return fr.binary(blk, e)

	case ast.IIF:
		return fr.iif(blk, e)

	default:
		panic("internal error: emit.expr: unhandled expression kind")
	}
}

// unary lowers NEG and NOT.
func (fr *frame) unary(blk *il.Block, e *ast.Expr) il.Value {
	v := fr.expr(blk, e.L)
	if e.UnOp == ast.Not {
		return blk.CreateNot(fr.toBool(blk, v))
	}
	return blk.CreateNeg(e.Type.ValueClass(), v)
}

// binary lowers every BinOp, applying the promotion/coercion each operand
// needs before the operator itself: comparisons and logical operators
// always yield w32, CONCAT routes through the string runtime, POW promotes
// to double and calls the pow helper, integer divide and modulo apply the
// bias-corrected signed lowering, and every other arithmetic operator
// lowers straight to its il.Op once both operands share Promote's common
// class.
func (fr *frame) binary(blk *il.Block, e *ast.Expr) il.Value {
	switch e.BinOp {
	case ast.And:
		l := fr.expr(blk, e.L)
		r := fr.expr(blk, e.R)
		return blk.CreateAnd(types.W32, fr.toBool(blk, l), fr.toBool(blk, r))
	case ast.Or:
		l := fr.expr(blk, e.L)
		r := fr.expr(blk, e.R)
		return blk.CreateOr(types.W32, fr.toBool(blk, l), fr.toBool(blk, r))
	case ast.Concat:
		return fr.concat(blk, e)
	case ast.Eq, ast.Neq, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return fr.compare(blk, e)
	case ast.Pow:
		return fr.pow(blk, e)
	case ast.IDiv:
		return fr.sdiv(blk, e)
	case ast.Mod:
		return fr.smod(blk, e)
	default:
		common := types.Promote(e.L.Type, e.R.Type)
		l := fr.coerceTo(blk, fr.expr(blk, e.L), e.L.Type, common)
		r := fr.coerceTo(blk, fr.expr(blk, e.R), e.R.Type, common)
		class := common.ValueClass()
		switch e.BinOp {
		case ast.Add:
			return blk.CreateAdd(class, l, r)
		case ast.Sub:
			return blk.CreateSub(class, l, r)
		case ast.Mul:
			return blk.CreateMul(class, l, r)
		case ast.Div:
			return blk.CreateDiv(class, l, r)
		default:
			panic("internal error: emit.binary: unhandled BinOp")
		}
	}
}

// toBool reduces a w32-typed comparison/logical result to itself, or
// compares a bare numeric value against zero when used directly as a
// condition (e.g. IF N THEN ...).
func (fr *frame) toBool(blk *il.Block, v il.Value) il.Value {
	if v.Class() == types.W32 {
		return v
	}
	zero := fr.ilFn.CreateConstInt(v.Class(), 0)
	return blk.CreateCompare(il.CmpNe, v.Class(), v, zero)
}

// compare lowers the six relational operators, coercing both sides to
// their common type first.
func (fr *frame) compare(blk *il.Block, e *ast.Expr) il.Value {
	if e.L.Type.IsString() {
		return fr.compareStrings(blk, e)
	}
	common := types.Promote(e.L.Type, e.R.Type)
	l := fr.coerceTo(blk, fr.expr(blk, e.L), e.L.Type, common)
	r := fr.coerceTo(blk, fr.expr(blk, e.R), e.R.Type, common)
	var kind il.CmpKind
	switch e.BinOp {
	case ast.Eq:
		kind = il.CmpEq
	case ast.Neq:
		kind = il.CmpNe
	case ast.Lt:
		kind = il.CmpLt
	case ast.Le:
		kind = il.CmpLe
	case ast.Gt:
		kind = il.CmpGt
	case ast.Ge:
		kind = il.CmpGe
	}
	return blk.CreateCompare(kind, common.ValueClass(), l, r)
}

// compareStrings lowers string equality/ordering through string_compare, the
// runtime's three-way comparator, checked against zero for the operator at
// hand.
func (fr *frame) compareStrings(blk *il.Block, e *ast.Expr) il.Value {
	l := fr.expr(blk, e.L)
	r := fr.expr(blk, e.R)
	h, _ := runtime.Lookup("string_compare")
	cmp := blk.CreateCall(h.Return.ValueClass(), h.Name, l, r)
	zero := fr.ilFn.CreateConstInt(types.L64, 0)
	var kind il.CmpKind
	switch e.BinOp {
	case ast.Eq:
		kind = il.CmpEq
	case ast.Neq:
		kind = il.CmpNe
	case ast.Lt:
		kind = il.CmpLt
	case ast.Le:
		kind = il.CmpLe
	case ast.Gt:
		kind = il.CmpGt
	case ast.Ge:
		kind = il.CmpGe
	}
	return blk.CreateCompare(kind, types.L64, cmp, zero)
}

// concat lowers CONCAT by handing both operands to the runtime's string
// constructor; a fresh result string starts at refcount 1 and needs no
// additional retain.
func (fr *frame) concat(blk *il.Block, e *ast.Expr) il.Value {
	l := fr.expr(blk, e.L)
	r := fr.expr(blk, e.R)
	h, _ := runtime.Lookup("string_concat")
	return blk.CreateCall(h.Return.ValueClass(), h.Name, l, r)
}

// pow lowers the POW operator per the language's fixed rule: promote both
// operands to d64, call the pow runtime helper, then convert the double
// result back to the expression's own inferred (usually still double,
// occasionally narrower) static type.
func (fr *frame) pow(blk *il.Block, e *ast.Expr) il.Value {
	d64 := types.Descriptor{Base: types.Double}
	l := fr.coerceTo(blk, fr.expr(blk, e.L), e.L.Type, d64)
	r := fr.coerceTo(blk, fr.expr(blk, e.R), e.R.Type, d64)
	h, _ := runtime.Lookup("pow")
	result := blk.CreateCall(h.Return.ValueClass(), h.Name, l, r)
	return fr.coerceTo(blk, result, d64, e.Type)
}

// sdiv lowers "\", the integer divide operator: a compile-time power-of-two
// divisor gets the branchless bias-corrected shift from lowerPow2SDiv,
// everything else lowers straight to OpSDiv (itself defined as
// truncating-toward-zero, the bias correction the emitter would otherwise
// have to synthesize by hand for the general case).
func (fr *frame) sdiv(blk *il.Block, e *ast.Expr) il.Value {
	common := types.Promote(e.L.Type, e.R.Type)
	class := common.ValueClass()
	l := fr.coerceTo(blk, fr.expr(blk, e.L), e.L.Type, common)
	r := fr.coerceTo(blk, fr.expr(blk, e.R), e.R.Type, common)
	if k, ok := powerOfTwo(e.R); ok {
		return fr.lowerPow2SDiv(blk, class, l, k)
	}
	return blk.CreateSDiv(class, l, r)
}

// smod lowers MOD per the identity a - (a \ b)*b, in terms of CreateSDiv
// (or the power-of-two shift form) and one extra multiply-subtract.
func (fr *frame) smod(blk *il.Block, e *ast.Expr) il.Value {
	common := types.Promote(e.L.Type, e.R.Type)
	class := common.ValueClass()
	l := fr.coerceTo(blk, fr.expr(blk, e.L), e.L.Type, common)
	r := fr.coerceTo(blk, fr.expr(blk, e.R), e.R.Type, common)
	var q il.Value
	if k, ok := powerOfTwo(e.R); ok {
		q = fr.lowerPow2SDiv(blk, class, l, k)
	} else {
		q = blk.CreateSDiv(class, l, r)
	}
	prod := blk.CreateMul(class, q, r)
	return blk.CreateSub(class, l, prod)
}

// iif lowers IIF(cond, then, otherwise): both arms are evaluated
// unconditionally (IIF is a pure value expression in this language, not a
// short-circuiting control construct) and selected with cond*then +
// (1-cond)*otherwise, since the il package has no dedicated select op.
func (fr *frame) iif(blk *il.Block, e *ast.Expr) il.Value {
	cond := fr.toBool(blk, fr.expr(blk, e.Cond))
	then := fr.coerceTo(blk, fr.expr(blk, e.Then), e.Then.Type, e.Type)
	other := fr.coerceTo(blk, fr.expr(blk, e.Otherwise), e.Otherwise.Type, e.Type)
	class := e.Type.ValueClass()
	boolDesc := types.Descriptor{Base: types.Int32, Attrs: types.Signed}
	one := fr.ilFn.CreateConstInt(types.W32, 1)
	notCond := blk.CreateSub(types.W32, one, cond)
	condW := fr.coerceTo(blk, cond, boolDesc, e.Type)
	notW := fr.coerceTo(blk, notCond, boolDesc, e.Type)
	lhs := blk.CreateMul(class, condW, then)
	rhs := blk.CreateMul(class, notW, other)
	return blk.CreateAdd(class, lhs, rhs)
}

// indexLoad lowers an array element read: resolve the array's descriptor
// pointer, ask the runtime for the element's address, then issue a typed
// load.
func (fr *frame) indexLoad(blk *il.Block, e *ast.Expr) il.Value {
	desc := fr.arrayDescriptor(blk, e)
	addr := fr.arrayElemAddr(blk, e, desc)
	return blk.CreateLoad(e.Type.ValueClass(), addr, e.Type.MemOp())
}

// arrayDescriptor loads the Ptr-classed array handle for e's array,
// wherever DIM or a parameter binding put it.
func (fr *frame) arrayDescriptor(blk *il.Block, e *ast.Expr) il.Value {
	return fr.loadVar(blk, e.Entry, ptrDesc)
}

// ptrDesc is the Ptr-classed descriptor used wherever the emitter needs to
// treat a value as an opaque runtime handle: array/string descriptors and
// record pointers are all interchangeable at this level.
var ptrDesc = types.Descriptor{Base: types.UserDefined}

// i64Desc is the signed l64 descriptor the array and index runtime calls
// uniformly expect.
var i64Desc = types.Descriptor{Base: types.Int64, Attrs: types.Signed}

// arrayElemAddr packs e.Args into a fresh stack buffer (one l64 cell per
// rank) and asks array_get_address for the resulting element address.
func (fr *frame) arrayElemAddr(blk *il.Block, e *ast.Expr, desc il.Value) il.Value {
	buf := fr.packIndices(blk, e.Args)
	h, _ := runtime.Lookup("array_get_address")
	return blk.CreateCall(h.Return.ValueClass(), h.Name, desc, buf)
}

// packIndices materializes a stack buffer holding len(exprs) l64 cells, one
// per index expression, and returns its base address.
func (fr *frame) packIndices(blk *il.Block, exprs []*ast.Expr) il.Value {
	base := blk.CreateAlloca(int64(len(exprs)))
	for i, a := range exprs {
		v := fr.coerceTo(blk, fr.expr(blk, a), a.Type, i64Desc)
		addr := il.Value(base)
		if i > 0 {
			off := fr.ilFn.CreateConstInt(types.Ptr, int64(i*8))
			addr = blk.CreateAdd(types.Ptr, base, off)
		}
		blk.CreateStore(addr, v, types.MemOp{Width: 64, Signed: true})
	}
	return base
}

// memberLoad lowers a record field read: the record's base pointer plus
// the field's byte offset, loaded with the field's own typed MemOp.
func (fr *frame) memberLoad(blk *il.Block, e *ast.Expr) il.Value {
	field := fr.resolveField(e)
	addr := fr.memberAddr(blk, e, field)
	return blk.CreateLoad(field.Type.ValueClass(), addr, field.Type.MemOp())
}

// memberAddr computes a MemberAccess expression's field address: the
// record's base pointer offset by the field's byte offset. Shared by
// memberLoad and the statement lowerer's assignment-target path.
func (fr *frame) memberAddr(blk *il.Block, e *ast.Expr, field symtab.FieldSymbol) il.Value {
	base := fr.expr(blk, e.L)
	if field.Offset == 0 {
		return base
	}
	off := fr.ilFn.CreateConstInt(types.Ptr, int64(field.Offset))
	return blk.CreateAdd(types.Ptr, base, off)
}

// resolveField looks up e.Member among e.L's record type's fields.
func (fr *frame) resolveField(e *ast.Expr) symtab.FieldSymbol {
	sym, ok := fr.tbl.LookupTypeByID(e.L.Type.TypeID)
	if !ok {
		panic("internal error: emit.resolveField: unknown record type id")
	}
	for _, f := range sym.Fields {
		if f.Name == e.Member {
			return f
		}
	}
	panic("internal error: emit.resolveField: field " + e.Member + " not found on " + sym.Name)
}
