package emit

import (
	"fbc/internal/ast"
	"fbc/internal/il"
	"fbc/internal/types"
)

// powerOfTwo reports whether e is a compile-time integer literal whose
// value is a positive power of two, returning its exponent. Only a bare
// literal is recognized; the semantic analyzer does no constant folding of
// larger expressions, so this is the only shape worth special-casing.
func powerOfTwo(e *ast.Expr) (int, bool) {
	if e.Kind != ast.IntLit || e.IVal <= 0 {
		return 0, false
	}
	v := e.IVal
	if v&(v-1) != 0 {
		return 0, false
	}
	k := 0
	for v > 1 {
		v >>= 1
		k++
	}
	return k, true
}

// lowerPow2SDiv lowers signed integer division by the compile-time constant
// 2^k into the branchless bias-corrected shift sequence x + mask, x >> k,
// where mask is 2^k-1 when x is negative and 0 otherwise: plain arithmetic
// shift rounds a negative dividend toward negative infinity, so a negative
// x needs 2^k-1 added before the final shift to instead truncate toward
// zero. The mask is extracted with an AND rather than a second shift, since
// the il package's shift ops carry no separate unsigned/logical variant to
// request for pulling the replicated sign bits down to the low end.
func (fr *frame) lowerPow2SDiv(blk *il.Block, class types.ValueClass, x il.Value, k int) il.Value {
	if k == 0 {
		return x
	}
	width := int64(64)
	if class == types.W32 {
		width = 32
	}
	signBits := blk.CreateShr(class, x, width-1)
	maskConst := fr.ilFn.CreateConstInt(class, (int64(1)<<uint(k))-1)
	bias := blk.CreateAnd(class, signBits, maskConst)
	biased := blk.CreateAdd(class, x, bias)
	return blk.CreateShr(class, biased, int64(k))
}
