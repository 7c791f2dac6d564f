package il

import (
	"fmt"
	"strings"

	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Block is one basic block of a Function: a straight-line sequence of
// instructions ending in exactly one terminator.
type Block struct {
	f    *Function
	id   int
	Label string
	Instrs []*Instr
	term *Instr
}

// ---------------------
// ----- functions -----
// ---------------------

// ID returns Block b's unique, function-local id.
func (b *Block) ID() int { return b.id }

// Name returns Block b's textual label, its explicit Label if set or a
// generated "block<id>" otherwise.
func (b *Block) Name() string {
	if b.Label != "" {
		return b.Label
	}
	return fmt.Sprintf("block%d", b.id)
}

// Terminated reports whether Block b already carries a terminator
// instruction (Jump, CondBranch, Multiway, Ret or RetVoid).
func (b *Block) Terminated() bool { return b.term != nil }

// String returns the textual IL rendering of Block b: its label followed by
// one line per instruction, in emission order.
func (b *Block) String() string {
	sb := strings.Builder{}
	sb.WriteString(b.Name())
	sb.WriteString(":\n")
	for _, in := range b.Instrs {
		sb.WriteRune('\t')
		sb.WriteString(in.String())
		sb.WriteRune('\n')
	}
	if b.term == nil {
		sb.WriteString(fmt.Sprintf("\t; internal error: block %s has no terminator\n", b.Name()))
	}
	return sb.String()
}

func (b *Block) emit(op Op, class types.ValueClass, a, c Value) *Instr {
	in := &Instr{id: b.f.getID(), Op: op, VClass: class, A: a, C: c}
	b.Instrs = append(b.Instrs, in)
	return in
}

func (b *Block) requireUnterminated() {
	if b.term != nil {
		panic(fmt.Sprintf("internal error: block %s already terminated, cannot append further instructions", b.Name()))
	}
}

// ------------------------------------
// ----- Arithmetic / comparisons -----
// ------------------------------------

func (b *Block) binary(op Op, class types.ValueClass, x, y Value) *Instr {
	b.requireUnterminated()
	if x.Class() != class || y.Class() != class {
		panic(fmt.Sprintf("internal error: operand class mismatch for %s: want %s, got %s and %s", op, class, x.Class(), y.Class()))
	}
	in := b.emit(op, class, x, nil)
	in.B = y
	return in
}

// CreateAdd emits an add of x and y, both of value class class.
func (b *Block) CreateAdd(class types.ValueClass, x, y Value) *Instr { return b.binary(OpAdd, class, x, y) }

// CreateSub emits a subtraction x - y.
func (b *Block) CreateSub(class types.ValueClass, x, y Value) *Instr { return b.binary(OpSub, class, x, y) }

// CreateMul emits a multiplication x * y.
func (b *Block) CreateMul(class types.ValueClass, x, y Value) *Instr { return b.binary(OpMul, class, x, y) }

// CreateDiv emits an unsigned integer or floating point divide x / y.
func (b *Block) CreateDiv(class types.ValueClass, x, y Value) *Instr { return b.binary(OpDiv, class, x, y) }

// CreateSDiv emits a signed integer divide x \ y that truncates toward
// zero; division by a compile-time power of two is lowered separately by
// the emitter as a bias-corrected shift (see emit.lowerPow2SDiv).
func (b *Block) CreateSDiv(class types.ValueClass, x, y Value) *Instr { return b.binary(OpSDiv, class, x, y) }

// CreateSMod emits a signed integer MOD, a - (a \ b)*b per the spec's
// identity; lowered in terms of CreateSDiv by the emitter.
func (b *Block) CreateSMod(class types.ValueClass, x, y Value) *Instr { return b.binary(OpSMod, class, x, y) }

// CreateShr emits an arithmetic (sign-propagating) right shift by the
// constant amount; there is no logical-shift variant.
func (b *Block) CreateShr(class types.ValueClass, x Value, amount int64) *Instr {
	b.requireUnterminated()
	in := b.emit(OpShr, class, x, nil)
	in.Imm = amount
	return in
}

// CreateShl emits a left shift by an immediate amount.
func (b *Block) CreateShl(class types.ValueClass, x Value, amount int64) *Instr {
	b.requireUnterminated()
	in := b.emit(OpShl, class, x, nil)
	in.Imm = amount
	return in
}

// CreateAnd emits a bitwise AND.
func (b *Block) CreateAnd(class types.ValueClass, x, y Value) *Instr { return b.binary(OpAnd, class, x, y) }

// CreateOr emits a bitwise OR.
func (b *Block) CreateOr(class types.ValueClass, x, y Value) *Instr { return b.binary(OpOr, class, x, y) }

// CreateNeg emits a unary arithmetic negation.
func (b *Block) CreateNeg(class types.ValueClass, x Value) *Instr {
	b.requireUnterminated()
	return b.emit(OpNeg, class, x, nil)
}

// CreateNot emits a unary logical NOT, producing a w32 boolean.
func (b *Block) CreateNot(x Value) *Instr {
	b.requireUnterminated()
	return b.emit(OpNot, types.W32, x, nil)
}

// cmpOp maps a comparison kind to its Op.
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

var cmpOps = [...]Op{OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe}

// CreateCompare emits a comparison of x and y (both of value class class),
// always producing a w32 boolean result (0 = false, nonzero = true), per
// the language's comparison-result rule.
func (b *Block) CreateCompare(kind CmpKind, class types.ValueClass, x, y Value) *Instr {
	b.requireUnterminated()
	if x.Class() != class || y.Class() != class {
		panic(fmt.Sprintf("internal error: compare operand class mismatch: want %s, got %s and %s", class, x.Class(), y.Class()))
	}
	in := b.emit(cmpOps[kind], types.W32, x, nil)
	in.B = y
	return in
}

// --------------------------
// ----- Casts / widths -----
// --------------------------

func (b *Block) cast(op Op, target types.ValueClass, x Value) *Instr {
	b.requireUnterminated()
	return b.emit(op, target, x, nil)
}

// CreateExtSB sign-extends an 8-bit value up to class target.
func (b *Block) CreateExtSB(target types.ValueClass, x Value) *Instr { return b.cast(OpExtSB, target, x) }

// CreateExtUB zero-extends an 8-bit value up to class target.
func (b *Block) CreateExtUB(target types.ValueClass, x Value) *Instr { return b.cast(OpExtUB, target, x) }

// CreateExtSH sign-extends a 16-bit value up to class target.
func (b *Block) CreateExtSH(target types.ValueClass, x Value) *Instr { return b.cast(OpExtSH, target, x) }

// CreateExtUH zero-extends a 16-bit value up to class target.
func (b *Block) CreateExtUH(target types.ValueClass, x Value) *Instr { return b.cast(OpExtUH, target, x) }

// CreateExtSW sign-extends a w32 value to l64.
func (b *Block) CreateExtSW(x Value) *Instr { return b.cast(OpExtSW, types.L64, x) }

// CreateExtUW zero-extends a w32 value to l64.
func (b *Block) CreateExtUW(x Value) *Instr { return b.cast(OpExtUW, types.L64, x) }

// CreateStoSI converts a single-precision float to a signed w32 integer.
func (b *Block) CreateStoSI(x Value) *Instr { return b.cast(OpStoSI, types.W32, x) }

// CreateDtoSI converts a double-precision float to a signed l64 integer.
func (b *Block) CreateDtoSI(x Value) *Instr { return b.cast(OpDtoSI, types.L64, x) }

// CreateSWtoF converts a signed w32 integer to single-precision float.
func (b *Block) CreateSWtoF(x Value) *Instr { return b.cast(OpSWtoF, types.S32, x) }

// CreateSLtoF converts a signed l64 integer to double-precision float.
func (b *Block) CreateSLtoF(x Value) *Instr { return b.cast(OpSLtoF, types.D64, x) }

// CreateExtS widens a single-precision float to double.
func (b *Block) CreateExtS(x Value) *Instr { return b.cast(OpExtS, types.D64, x) }

// CreateTruncD narrows a double-precision float to single.
func (b *Block) CreateTruncD(x Value) *Instr { return b.cast(OpTruncD, types.S32, x) }

// ---------------------------
// ----- Memory / calls -----
// ---------------------------

// CreateLoad emits a typed memory load from address addr with the width and
// signedness given by mem.
func (b *Block) CreateLoad(class types.ValueClass, addr Value, mem MemOp) *Instr {
	b.requireUnterminated()
	in := b.emit(OpLoad, class, addr, nil)
	in.Mem = mem
	return in
}

// CreateStore emits a typed memory store of val to address addr.
func (b *Block) CreateStore(addr, val Value, mem MemOp) *Instr {
	b.requireUnterminated()
	in := b.emit(OpStore, val.Class(), addr, nil)
	in.B = val
	in.Mem = mem
	return in
}

// CreateCall emits a call to the named function/runtime helper sym,
// returning a value of class ret.
func (b *Block) CreateCall(ret types.ValueClass, sym string, args ...Value) *Instr {
	b.requireUnterminated()
	in := b.emit(OpCall, ret, nil, nil)
	in.Sym = sym
	in.Args = args
	return in
}

// CreateGlobalAddr emits the address of global slot slot: the per-block
// cached globals base pointer offset by the slot's fixed position in the
// runtime-allocated global vector.
func (b *Block) CreateGlobalAddr(slot int) *Instr {
	b.requireUnterminated()
	in := b.emit(OpGlobalAddr, types.Ptr, nil, nil)
	in.Imm = int64(slot)
	return in
}

// CreateAlloca reserves count contiguous 8-byte stack slots in the current
// function's frame, yielding their base address. Used to build the small
// packed index/bounds buffers array_get_address and array_redim expect, since
// the language has no addressable local aggregates of its own.
func (b *Block) CreateAlloca(count int64) *Instr {
	b.requireUnterminated()
	in := b.emit(OpAlloca, types.Ptr, nil, nil)
	in.Imm = count
	return in
}

// CreateDataAddr emits the address of a named data-segment entry.
func (b *Block) CreateDataAddr(sym string) *Instr {
	b.requireUnterminated()
	in := b.emit(OpDataAddr, types.Ptr, nil, nil)
	in.Sym = sym
	return in
}

// CreateMadd emits a fused multiply-add a*b+c; only valid when a, b and c
// share an integer value class (the float form is CreateFMadd).
func (b *Block) CreateMadd(class types.ValueClass, a, m, c Value) *Instr {
	b.requireUnterminated()
	if a.Class() != class || m.Class() != class || c.Class() != class {
		panic("internal error: CreateMadd operand class mismatch")
	}
	in := b.emit(OpMadd, class, a, c)
	in.B = m
	return in
}

// CreateFMadd emits a fused floating point multiply-add a*b+c.
func (b *Block) CreateFMadd(class types.ValueClass, a, m, c Value) *Instr {
	b.requireUnterminated()
	if a.Class() != class || m.Class() != class || c.Class() != class {
		panic("internal error: CreateFMadd operand class mismatch")
	}
	in := b.emit(OpFMadd, class, a, c)
	in.B = m
	return in
}

// -------------------------
// ----- Terminators -----
// -------------------------

// CreateJump terminates Block b with an unconditional jump to dst.
func (b *Block) CreateJump(dst *Block) *Instr {
	b.requireUnterminated()
	in := &Instr{id: b.f.getID(), Op: OpJump, Targets: []*Block{dst}}
	b.Instrs = append(b.Instrs, in)
	b.term = in
	return in
}

// CreateCondBranch terminates Block b with a branch on cond (nonzero =
// true) to thenBlk or elseBlk.
func (b *Block) CreateCondBranch(cond Value, thenBlk, elseBlk *Block) *Instr {
	b.requireUnterminated()
	if cond.Class() != types.W32 {
		panic(fmt.Sprintf("internal error: CreateCondBranch condition must be w32, got %s", cond.Class()))
	}
	in := &Instr{id: b.f.getID(), Op: OpCondBranch, A: cond, Targets: []*Block{thenBlk, elseBlk}}
	b.Instrs = append(b.Instrs, in)
	b.term = in
	return in
}

// CreateMultiway terminates Block b with a chained compare-and-branch
// sequence: selector is compared in emission order against 1..len(targets),
// landing on targets[i] for selector == i+1, falling through to fallthroughBlk
// otherwise.
func (b *Block) CreateMultiway(selector Value, targets []*Block, fallthroughBlk *Block) *Instr {
	b.requireUnterminated()
	all := append(append([]*Block{}, targets...), fallthroughBlk)
	in := &Instr{id: b.f.getID(), Op: OpMultiway, A: selector, Targets: all}
	b.Instrs = append(b.Instrs, in)
	b.term = in
	return in
}

// CreateRet terminates Block b by returning val from the owning function.
func (b *Block) CreateRet(val Value) *Instr {
	b.requireUnterminated()
	in := &Instr{id: b.f.getID(), Op: OpRet, A: val}
	b.Instrs = append(b.Instrs, in)
	b.term = in
	return in
}

// CreateRetVoid terminates Block b with a SUB's void return.
func (b *Block) CreateRetVoid() *Instr {
	b.requireUnterminated()
	in := &Instr{id: b.f.getID(), Op: OpRetVoid}
	b.Instrs = append(b.Instrs, in)
	b.term = in
	return in
}
