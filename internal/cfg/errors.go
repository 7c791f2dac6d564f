package cfg

import (
	"fmt"

	"fbc/internal/ast"
)

func diagBadJumpTarget(s *ast.Stmt) error {
	return fmt.Errorf("line %d: no block reserved for jump target (BadJumpTarget)", s.Line)
}

func diagReturnOutsideGosub(s *ast.Stmt) error {
	return fmt.Errorf("line %d: RETURN without an enclosing GOSUB (ReturnOutsideGosub)", s.Line)
}
