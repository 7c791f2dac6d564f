package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbc/internal/ast"
)

func stmt(kind ast.StmtKind) *ast.Stmt { return &ast.Stmt{Kind: kind} }

func TestWhileLoopHasHeaderBodyExit(t *testing.T) {
	body := []*ast.Stmt{stmt(ast.Print)}
	loop := &ast.Stmt{Kind: ast.While, LHS: ast.NewIntLit(1, 1), Body: body}

	g, err := Build("", []*ast.Stmt{loop})
	require.NoError(t, err)

	var headers, bodies, exits int
	for _, b := range g.Blocks {
		switch b.Kind {
		case LoopHeader:
			headers++
			assert.Len(t, b.Edges, 2, "header must have CondTrue and CondFalse edges")
		case LoopBody:
			bodies++
		case LoopExit:
			exits++
		}
	}
	assert.Equal(t, 1, headers)
	assert.Equal(t, 1, bodies)
	assert.Equal(t, 1, exits)
}

func TestExitForRoutesThroughEnclosingFinally(t *testing.T) {
	// TRY
	//   FOR ...
	//     EXIT FOR
	//   NEXT
	// CATCH
	// FINALLY
	//   PRINT
	forStmt := &ast.Stmt{
		Kind:  ast.For,
		ForTo: ast.NewIntLit(1, 10),
		Body:  []*ast.Stmt{stmt(ast.ExitFor)},
	}
	tryStmt := &ast.Stmt{
		Kind:    ast.Try,
		Body:    []*ast.Stmt{forStmt},
		Catches: []ast.Catch{{Body: []*ast.Stmt{stmt(ast.Print)}}},
		Else:    []*ast.Stmt{stmt(ast.Print)}, // FINALLY arm
	}

	g, err := Build("", []*ast.Stmt{tryStmt})
	require.NoError(t, err)

	var finallyBlocks, callEdgesIntoFinally, returnEdgesOutOfFinally int
	for _, b := range g.Blocks {
		if b.Kind == Finally {
			finallyBlocks++
			for _, e := range b.Edges {
				if e.Kind == Return {
					returnEdgesOutOfFinally++
				}
			}
		}
		for _, e := range b.Edges {
			if e.Kind == Call {
				target := g.Block(e.Target)
				if target.Kind == Finally {
					callEdgesIntoFinally++
				}
			}
		}
	}

	assert.Equal(t, 1, finallyBlocks)
	// EXIT FOR inside the try body, plus the try body's own normal
	// completion and the catch handler's completion, all route through
	// the single FINALLY block via a Call edge.
	assert.Equal(t, 3, callEdgesIntoFinally)
	// FINALLY's own normal completion fans out to every registered landing.
	assert.Equal(t, 3, returnEdgesOutOfFinally)
}

func TestReturnWithoutGosubIsRejected(t *testing.T) {
	_, err := Build("", []*ast.Stmt{stmt(ast.Return)})
	assert.Error(t, err)
}

func TestMultiMatchCaseChainsComparisons(t *testing.T) {
	// SELECT CASE x
	//   CASE 1, 2, 3
	//     PRINT
	//   CASE ELSE
	//     PRINT
	// END SELECT
	selectStmt := &ast.Stmt{
		Kind: ast.Select,
		Cases: []ast.Case{
			{
				Matches: []*ast.Expr{ast.NewIntLit(1, 1), ast.NewIntLit(1, 2), ast.NewIntLit(1, 3)},
				Body:    []*ast.Stmt{stmt(ast.Print)},
			},
			{IsElse: true, Body: []*ast.Stmt{stmt(ast.Print)}},
		},
	}

	g, err := Build("", []*ast.Stmt{selectStmt})
	require.NoError(t, err)
	require.NoError(t, Validate(g))

	var caseBodies int
	for _, b := range g.Blocks {
		if b.Kind == SelectCase {
			caseBodies++
		}
	}
	// One SelectCase block for the multi-match arm, one for CASE ELSE.
	assert.Equal(t, 2, caseBodies)
}

func TestGosubMultipleCallSitesShareLandingSet(t *testing.T) {
	sub := &ast.Stmt{Kind: ast.Print, Line: 100}
	ret := &ast.Stmt{Kind: ast.Return, Line: 101}
	call1 := &ast.Stmt{Kind: ast.Gosub, Line2: 100}
	call2 := &ast.Stmt{Kind: ast.Gosub, Line2: 100}

	g, err := Build("", []*ast.Stmt{call1, call2, sub, ret})
	require.NoError(t, err)

	var returnEdges int
	for _, b := range g.Blocks {
		for _, e := range b.Edges {
			if e.Kind == Return {
				returnEdges++
			}
		}
	}
	assert.Equal(t, 2, returnEdges, "RETURN fans out a Return edge to every registered landing")
}
