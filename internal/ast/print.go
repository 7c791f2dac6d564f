package ast

import (
	"fmt"
	"strings"
)

var declNames = [...]string{"FUNCTION", "SUB", "TYPE", "GLOBAL", "CONSTANT"}

var stmtNames = [...]string{
	"LET", "DIM", "REDIM", "REDIM PRESERVE", "ERASE", "PRINT", "INPUT", "IF", "SELECT",
	"FOR", "NEXT", "WHILE", "WEND", "DO", "LOOP", "REPEAT", "UNTIL", "GOTO", "GOSUB",
	"RETURN", "ON GOTO", "ON GOSUB", "EXIT FOR", "EXIT WHILE", "EXIT DO", "EXIT FUNCTION",
	"EXIT SUB", "CONTINUE", "TRY", "THROW", "END", "CALL", "SHARED", "LABEL", "BLOCK",
}

var exprNames = [...]string{
	"INT", "FLOAT", "STRING", "VAR", "INDEX", "MEMBER", "BINARY", "UNARY", "IIF",
}

// String returns a print-friendly name for the DeclKind.
func (k DeclKind) String() string { return safeName(declNames[:], int(k)) }

// String returns a print-friendly name for the StmtKind.
func (k StmtKind) String() string { return safeName(stmtNames[:], int(k)) }

// String returns a print-friendly name for the ExprKind.
func (k ExprKind) String() string { return safeName(exprNames[:], int(k)) }

func safeName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("?(%d)", i)
	}
	return names[i]
}

// String returns a single-line, print-friendly rendering of Expr e.
func (e *Expr) String() string {
	if e == nil {
		return "<nil-expr>"
	}
	switch e.Kind {
	case IntLit:
		return fmt.Sprintf("%d", e.IVal)
	case FloatLit:
		return fmt.Sprintf("%g", e.FVal)
	case StringLit:
		return fmt.Sprintf("%q", e.SVal)
	case Var:
		return e.Name
	case Index:
		return fmt.Sprintf("%s(...)", e.Name)
	case MemberAccess:
		return fmt.Sprintf("%s.%s", e.L, e.Member)
	case Binary:
		return fmt.Sprintf("(%s %s %s)", e.L, e.BinOp, e.R)
	case Unary:
		return fmt.Sprintf("(%s%s)", e.UnOp, e.L)
	case IIF:
		return fmt.Sprintf("IIF(%s, %s, %s)", e.Cond, e.Then, e.Otherwise)
	default:
		return e.Kind.String()
	}
}

var binOpNames = [...]string{"+", "-", "*", "/", "\\", "MOD", "^", "&", "=", "<>", "<", "<=", ">", ">=", "AND", "OR"}
var unOpNames = [...]string{"-", "NOT "}

// String returns the surface-syntax spelling of BinOp b.
func (b BinOp) String() string { return safeName(binOpNames[:], int(b)) }

// String returns the surface-syntax spelling of UnOp u.
func (u UnOp) String() string { return safeName(unOpNames[:], int(u)) }

// Print recursively prints Stmt s and its nested statement lists, indenting
// for every recursive call.
func (s *Stmt) Print(depth int) {
	if s == nil {
		fmt.Printf("%s---> NIL\n", strings.Repeat("  ", depth))
		return
	}
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), s.describe())
	for _, c := range s.Body {
		c.Print(depth + 1)
	}
	for _, c := range s.Else {
		c.Print(depth + 1)
	}
	for _, c := range s.Cases {
		for _, b := range c.Body {
			b.Print(depth + 1)
		}
	}
	for _, c := range s.Catches {
		for _, b := range c.Body {
			b.Print(depth + 1)
		}
	}
}

func (s *Stmt) describe() string {
	switch s.Kind {
	case Let:
		return fmt.Sprintf("LET [line %d] %s = %s", s.Line, s.LHS, firstExpr(s.Exprs))
	case Goto:
		return fmt.Sprintf("GOTO [line %d] -> %d", s.Line, s.Line2)
	case Gosub:
		return fmt.Sprintf("GOSUB [line %d] -> %d", s.Line, s.Line2)
	default:
		return fmt.Sprintf("%s [line %d]", s.Kind, s.Line)
	}
}

func firstExpr(es []*Expr) *Expr {
	if len(es) == 0 {
		return nil
	}
	return es[0]
}
