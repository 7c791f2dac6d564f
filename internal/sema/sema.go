// Package sema implements the three-pass semantic analyzer: declaration
// collection, per-function body walking, and expression type annotation.
// It populates a shared symtab.Table and accumulates diagnostics in a
// diag.Bag rather than returning early on the first error, so one run
// reports as many problems as it safely can.
package sema

import (
	"fbc/internal/ast"
	"fbc/internal/diag"
	"fbc/internal/symtab"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// function bundles one callable body (a SUB/FUNCTION or the implicit main
// program, named "") with its declaration, for passes 2 and 3 to share.
type function struct {
	name string
	decl *ast.Decl // nil for the main program.
	body []*ast.Stmt
}

// ---------------------
// ----- functions -----
// ---------------------

// Analyze runs all three passes over prog, mutating tbl and appending to
// bag. It returns false once bag carries any error, per the "pipeline
// halts after B" failure semantics — callers should not proceed to CFG
// construction when Analyze returns false.
func Analyze(prog *ast.Program, tbl *symtab.Table, bag *diag.Bag, file string, threads int) bool {
	collectDeclarations(prog, tbl, bag, file)
	if bag.HasErrors() {
		return false
	}

	funcs := functions(prog)
	walkFunctionBodies(funcs, tbl, bag, file, threads)
	if bag.HasErrors() {
		return false
	}

	annotateTypes(funcs, tbl, bag, file)
	return !bag.HasErrors()
}

// functions collects every SUB/FUNCTION body plus the main program body
// (under the empty function name, matching symtab.Key's global convention)
// into one flat worklist for passes 2 and 3.
func functions(prog *ast.Program) []function {
	out := make([]function, 0, len(prog.Decls)+1)
	for _, d := range prog.Decls {
		if d.Kind != ast.DeclFunction && d.Kind != ast.DeclSub {
			continue
		}
		out = append(out, function{name: d.Name, decl: d, body: d.Body})
	}
	out = append(out, function{name: "", body: prog.Main})
	return out
}

// collectDeclarations implements pass 1: TYPE, GLOBAL, CONSTANT and
// SUB/FUNCTION headers are registered in source order, assigning global
// slot offsets and the monotonic user-type registry ids.
func collectDeclarations(prog *ast.Program, tbl *symtab.Table, bag *diag.Bag, file string) {
	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.DeclType:
			fields := make([]symtab.FieldSymbol, len(d.Fields))
			for i, f := range d.Fields {
				fields[i] = symtab.FieldSymbol{Name: f.Name, Type: f.Type}
			}
			if _, err := tbl.DeclareType(d.Name, fields); err != nil {
				bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, d.Line, "%s", err)
			}

		case ast.DeclGlobal:
			if d.Rank > 0 {
				if _, err := tbl.DeclareArray("", d.Name, d.Type, d.Rank, symtab.Global); err != nil {
					bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, d.Line, "%s", err)
				}
				continue
			}
			if _, err := tbl.DeclareGlobal(d.Name, d.Type); err != nil {
				bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, d.Line, "%s", err)
			}

		case ast.DeclConstant:
			val, ok := foldConstant(d.Value)
			if !ok {
				bag.Errorf(diag.SemanticErr, diag.TypeMismatch, file, d.Line,
					"CONSTANT %s: initializer must be a literal", d.Name)
				continue
			}
			if _, err := tbl.DeclareConstant("", d.Name, d.Type, val); err != nil {
				bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, d.Line, "%s", err)
			}

		case ast.DeclFunction, ast.DeclSub:
			fs := &symtab.FunctionSymbol{
				Name:   d.Name,
				Return: d.Type,
				IsSub:  d.Kind == ast.DeclSub,
			}
			for _, p := range d.Params {
				fs.Params = append(fs.Params, p.Type)
				fs.ParamRef = append(fs.ParamRef, p.ByRef)
			}
			if err := tbl.DeclareFunction(fs); err != nil {
				bag.Errorf(diag.SemanticErr, diag.DuplicateSymbol, file, d.Line, "%s", err)
			}
		}
	}
}

// foldConstant extracts a literal Go value from a CONSTANT initializer
// expression. Only bare literals are supported; anything else is rejected
// since the constant-folding contract only covers literal inputs.
func foldConstant(e *ast.Expr) (interface{}, bool) {
	if e == nil {
		return nil, false
	}
	switch e.Kind {
	case ast.IntLit:
		return e.IVal, true
	case ast.FloatLit:
		return e.FVal, true
	case ast.StringLit:
		return e.SVal, true
	default:
		return nil, false
	}
}
