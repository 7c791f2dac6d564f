// Package il is the typed SSA-shaped intermediate language the emitter
// produces: a module of globals, data declarations and functions, each
// function a sequence of basic blocks of typed three-address instructions.
// It is a direct generalization of the teacher's ir/lir package: the same
// Create* builder-method shape on *Block, the same invariant-checking
// panics on operand-class mismatches (these are compiler bugs, not user
// errors, so they are not returned as diag.Bag entries).
package il

import (
	"fmt"

	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Op names one IL instruction opcode.
type Op int

// Value is any operand a three-address instruction may reference: a
// temporary produced by a prior instruction, a function parameter, or a
// constant.
type Value interface {
	ID() int
	Class() types.ValueClass
	String() string
}

// Instr is one concrete three-address instruction inside a Block.
type Instr struct {
	id      int
	Op      Op
	VClass  types.ValueClass
	A, B, C Value // Operands; meaning depends on Op. C is used only by fused MADD/FMADD.
	Imm     int64   // Immediate operand for shift-by-constant and similar ops.
	Sym     string  // Symbol name for Call/GlobalAddr/DataAddr.
	Args    []Value // Call argument list.
	Targets []*Block // Branch targets: len 1 (Jump), 2 (CondBranch: true, false), or N (Multiway).
	Mem     MemOp   // Typed load/store width+sign, valid only for OpLoad/OpStore.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	OpConst Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv  // Unsigned/float divide.
	OpSDiv // Signed divide, bias-corrected truncation toward zero.
	OpSMod
	OpShr  // Arithmetic shift right by Imm.
	OpShl
	OpAnd
	OpOr
	OpXor
	OpNeg
	OpNot
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpExtSB
	OpExtUB
	OpExtSH
	OpExtUH
	OpExtSW
	OpExtUW
	OpStoSI // single -> signed int
	OpDtoSI // double -> signed int
	OpSWtoF // signed w32 -> float
	OpSLtoF // signed l64 -> float
	OpExtS  // single -> double
	OpTruncD // double -> single
	OpLoad
	OpStore
	OpCall
	OpParam
	OpGlobalAddr
	OpDataAddr
	OpAlloca // reserve a fixed number of 8-byte stack slots, yielding their base address
	OpMadd   // fused a*b+c
	OpFMadd
	OpJump
	OpCondBranch
	OpMultiway
	OpRet
	OpRetVoid
)

// MemOp describes a typed memory access's width/sign/float-ness, matching
// types.MemOp: the emitter copies a Descriptor's MemOp onto Load/Store
// instructions verbatim.
type MemOp = types.MemOp

// -------------------
// ----- globals -----
// -------------------

var opNames = map[Op]string{
	OpConst: "const", OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div",
	OpSDiv: "sdiv", OpSMod: "smod", OpShr: "shr", OpShl: "shl", OpAnd: "and",
	OpOr: "or", OpXor: "xor", OpNeg: "neg", OpNot: "not",
	OpCmpEq: "ceq", OpCmpNe: "cne", OpCmpLt: "clt", OpCmpLe: "cle",
	OpCmpGt: "cgt", OpCmpGe: "cge",
	OpExtSB: "extsb", OpExtUB: "extub", OpExtSH: "extsh", OpExtUH: "extuh",
	OpExtSW: "extsw", OpExtUW: "extuw",
	OpStoSI: "stosi", OpDtoSI: "dtosi", OpSWtoF: "swtof", OpSLtoF: "sltof",
	OpExtS: "exts", OpTruncD: "truncd",
	OpLoad: "load", OpStore: "store", OpCall: "call", OpParam: "param",
	OpGlobalAddr: "globaddr", OpDataAddr: "dataaddr", OpAlloca: "alloca",
	OpMadd: "madd", OpFMadd: "fmadd",
	OpJump: "jump", OpCondBranch: "cbranch", OpMultiway: "multiway",
	OpRet: "ret", OpRetVoid: "ret.void",
}

// ---------------------
// ----- functions -----
// ---------------------

// String returns the IL mnemonic for Op op.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// ID returns the instruction's temp id, used as its operand-reference
// identity by every other instruction that consumes it.
func (i *Instr) ID() int { return i.id }

// Class returns the value class this instruction produces.
func (i *Instr) Class() types.ValueClass { return i.VClass }

// String returns the one-line textual rendering of Instr i, in the style of
// <name> = <op> <class> <operands>.
func (i *Instr) String() string {
	switch i.Op {
	case OpJump:
		return fmt.Sprintf("jump %s", i.Targets[0].Name())
	case OpCondBranch:
		return fmt.Sprintf("cbranch %s, %s, %s", i.A, i.Targets[0].Name(), i.Targets[1].Name())
	case OpMultiway:
		s := fmt.Sprintf("multiway %s", i.A)
		for idx, t := range i.Targets {
			s += fmt.Sprintf(", %d->%s", idx, t.Name())
		}
		return s
	case OpRet:
		return fmt.Sprintf("ret %s", i.A)
	case OpRetVoid:
		return "ret.void"
	case OpConst:
		return fmt.Sprintf("%s = const.%s %d", tempName(i.id), i.VClass, i.Imm)
	case OpCall:
		return fmt.Sprintf("%s = call.%s %s(%s)", tempName(i.id), i.VClass, i.Sym, argList(i.Args))
	case OpStore:
		return fmt.Sprintf("store.%s [%s], %s", i.VClass, i.A, i.B)
	case OpLoad:
		return fmt.Sprintf("%s = load.%s [%s]", tempName(i.id), i.VClass, i.A)
	case OpGlobalAddr:
		return fmt.Sprintf("%s = globaddr slot %d", tempName(i.id), i.Imm)
	case OpDataAddr:
		return fmt.Sprintf("%s = dataaddr %s", tempName(i.id), i.Sym)
	case OpAlloca:
		return fmt.Sprintf("%s = alloca %d slots", tempName(i.id), i.Imm)
	case OpMadd, OpFMadd:
		return fmt.Sprintf("%s = %s.%s %s, %s, %s", tempName(i.id), i.Op, i.VClass, i.A, i.B, i.C)
	default:
		if i.B != nil {
			return fmt.Sprintf("%s = %s.%s %s, %s", tempName(i.id), i.Op, i.VClass, i.A, i.B)
		}
		return fmt.Sprintf("%s = %s.%s %s", tempName(i.id), i.Op, i.VClass, i.A)
	}
}

func tempName(id int) string { return fmt.Sprintf("%%t%d", id) }

func argList(args []Value) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}
