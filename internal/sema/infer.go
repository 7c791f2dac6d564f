package sema

import (
	"fbc/internal/ast"
	"fbc/internal/diag"
	"fbc/internal/symtab"
	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// inferCtx carries the owning function name and shared tables through the
// expression-annotation recursion.
type inferCtx struct {
	fn   string
	tbl  *symtab.Table
	bag  *diag.Bag
	file string
}

// ---------------------
// ----- functions -----
// ---------------------

// annotateTypes implements pass 3: every expression in every function body
// is walked bottom-up, resolving Var/Index/MemberAccess bindings against
// tbl and filling in Expr.Type, then validating every assignment and call
// argument's coercion against its target, recording the Coercion applied
// or reporting a diagnostic when one is forbidden.
func annotateTypes(funcs []function, tbl *symtab.Table, bag *diag.Bag, file string) {
	for _, f := range funcs {
		ctx := &inferCtx{fn: f.name, tbl: tbl, bag: bag, file: file}
		ctx.walkRange(f.body)
	}
}

func (ctx *inferCtx) walkRange(stmts []*ast.Stmt) {
	for _, s := range stmts {
		ctx.walkStmt(s)
	}
}

func (ctx *inferCtx) walkStmt(s *ast.Stmt) {
	for _, e := range s.Exprs {
		ctx.infer(e)
	}
	if s.LHS != nil {
		ctx.infer(s.LHS)
	}
	if s.ForFrom != nil {
		ctx.infer(s.ForFrom)
	}
	if s.ForTo != nil {
		ctx.infer(s.ForTo)
	}
	if s.ForStep != nil {
		ctx.infer(s.ForStep)
	}

	switch s.Kind {
	case ast.Let:
		if s.LHS != nil && len(s.Exprs) > 0 {
			ctx.checkAssign(s.LHS, s.Exprs[0])
		}
	case ast.Call:
		ctx.checkCall(s)
	}

	ctx.walkRange(s.Body)
	ctx.walkRange(s.Else)
	for _, c := range s.Cases {
		for _, m := range c.Matches {
			ctx.infer(m)
		}
		ctx.walkRange(c.Body)
	}
	for _, c := range s.Catches {
		ctx.walkRange(c.Body)
	}
}

// checkAssign validates that rhs's inferred type may reach lhs's declared
// type, recording the resulting Coercion on rhs and reporting a diagnostic
// when the conversion is forbidden implicitly.
func (ctx *inferCtx) checkAssign(lhs, rhs *ast.Expr) {
	if lhs.Type.Base == types.Unknown || rhs.Type.Base == types.Unknown {
		return
	}
	c := types.CheckCoercion(rhs.Type, lhs.Type)
	rhs.Coercion = c
	switch c {
	case types.ImplicitLossy:
		ctx.bag.Warnf(diag.SemanticErr, diag.TypeMismatch, ctx.file, rhs.Line,
			"implicit narrowing conversion from %s to %s", rhs.Type, lhs.Type)
	case types.ExplicitRequired, types.Incompatible:
		ctx.bag.Errorf(diag.SemanticErr, diag.TypeMismatch, ctx.file, rhs.Line,
			"cannot assign %s to %s without an explicit conversion", rhs.Type, lhs.Type)
	}
}

// checkCall resolves s's target function and validates its argument count
// and per-argument coercions against the declared parameter types.
func (ctx *inferCtx) checkCall(s *ast.Stmt) {
	fn, ok := ctx.tbl.LookupFunction(s.Name)
	if !ok {
		ctx.bag.Errorf(diag.SemanticErr, diag.UnknownFunction, ctx.file, s.Line, "call to undeclared %s", s.Name)
		return
	}
	if len(s.Exprs) != len(fn.Params) {
		ctx.bag.Errorf(diag.SemanticErr, diag.ArityMismatch, ctx.file, s.Line,
			"%s expects %d argument(s), got %d", s.Name, len(fn.Params), len(s.Exprs))
		return
	}
	for i, arg := range s.Exprs {
		want := fn.Params[i]
		if arg.Type.Base == types.Unknown {
			continue
		}
		c := types.CheckCoercion(arg.Type, want)
		arg.Coercion = c
		switch c {
		case types.ImplicitLossy:
			ctx.bag.Warnf(diag.SemanticErr, diag.TypeMismatch, ctx.file, arg.Line,
				"implicit narrowing conversion from %s to %s in argument %d to %s", arg.Type, want, i+1, s.Name)
		case types.ExplicitRequired, types.Incompatible:
			ctx.bag.Errorf(diag.SemanticErr, diag.TypeMismatch, ctx.file, arg.Line,
				"argument %d to %s: cannot convert %s to %s", i+1, s.Name, arg.Type, want)
		}
	}
}

// infer fills e.Type (and, where applicable, e.Entry) by recursively
// resolving its operands. Literal nodes already carry their type from
// their ast.New*Lit constructor and are left untouched.
func (ctx *inferCtx) infer(e *ast.Expr) types.Descriptor {
	if e == nil {
		return types.Descriptor{Base: types.Unknown}
	}

	switch e.Kind {
	case ast.IntLit, ast.FloatLit, ast.StringLit:
		// Already typed by its constructor.

	case ast.Var:
		sym, key, ok := ctx.tbl.LookupVariable(ctx.fn, e.Name)
		if !ok {
			ctx.bag.Errorf(diag.SemanticErr, diag.UnresolvedReference, ctx.file, e.Line,
				"undeclared variable %s", e.Name)
			e.Type = types.Descriptor{Base: types.Unknown}
			break
		}
		e.Entry = key
		e.Type = sym.Type

	case ast.Index:
		arr, ok := ctx.tbl.LookupArray(ctx.fn, e.Name)
		if !ok {
			ctx.bag.Errorf(diag.SemanticErr, diag.UnresolvedReference, ctx.file, e.Line,
				"undeclared array %s", e.Name)
			e.Type = types.Descriptor{Base: types.Unknown}
			break
		}
		e.Entry = symtab.Key{Func: ctx.fn, Name: e.Name}
		e.Type = arr.Elem
		for _, a := range e.Args {
			ctx.infer(a)
		}

	case ast.MemberAccess:
		base := ctx.infer(e.L)
		if base.Base != types.UserDefined {
			ctx.bag.Errorf(diag.SemanticErr, diag.TypeMismatch, ctx.file, e.Line,
				"%s: member access on a non-record type", e.Member)
			e.Type = types.Descriptor{Base: types.Unknown}
			break
		}
		e.Type = ctx.memberType(base.TypeID, e.Member, e.Line)

	case ast.Unary:
		inner := ctx.infer(e.L)
		if e.UnOp == ast.Not {
			e.Type = types.Descriptor{Base: types.Int32, Attrs: types.Signed}
		} else {
			e.Type = inner
		}

	case ast.Binary:
		l := ctx.infer(e.L)
		r := ctx.infer(e.R)
		switch e.BinOp {
		case ast.Eq, ast.Neq, ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.And, ast.Or:
			e.Type = types.Descriptor{Base: types.Int32, Attrs: types.Signed}
		case ast.Concat:
			if l.Base == types.UnicodeString || r.Base == types.UnicodeString {
				e.Type = types.Descriptor{Base: types.UnicodeString}
			} else {
				e.Type = types.Descriptor{Base: types.AsciiString}
			}
		default:
			e.Type = types.Promote(l, r)
		}

	case ast.IIF:
		ctx.infer(e.Cond)
		then := ctx.infer(e.Then)
		els := ctx.infer(e.Otherwise)
		e.Type = types.Promote(then, els)
	}

	return e.Type
}

// memberType resolves a field by name against the user-defined type
// identified by typeID, reporting a diagnostic and returning Unknown if no
// such field exists.
func (ctx *inferCtx) memberType(typeID uint32, member string, line int) types.Descriptor {
	sym, ok := ctx.tbl.LookupTypeByID(typeID)
	if !ok {
		ctx.bag.Errorf(diag.SemanticErr, diag.UndeclaredType, ctx.file, line, "unknown record type id %d", typeID)
		return types.Descriptor{Base: types.Unknown}
	}
	for _, f := range sym.Fields {
		if f.Name == member {
			return f.Type
		}
	}
	ctx.bag.Errorf(diag.SemanticErr, diag.UnresolvedReference, ctx.file, line, "no field %q on %s", member, sym.Name)
	return types.Descriptor{Base: types.Unknown}
}
