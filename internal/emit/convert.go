package emit

import (
	"fbc/internal/il"
	"fbc/internal/symtab"
	"fbc/internal/types"
)

// slotOf returns key's position in the flat global vector, assigning a new
// emit-time slot for a function-local binding (or true global not yet
// cached) on first use.
func (fr *frame) slotOf(key symtab.Key, typ types.Descriptor) int {
	if s, ok := fr.slots[key]; ok {
		return s
	}
	if key.Func == "" {
		if sym, _, ok := fr.tbl.LookupVariable("", key.Name); ok && sym.HasSlot {
			fr.slots[key] = sym.Slot
			return sym.Slot
		}
	}
	slot := *fr.slotCounter
	*fr.slotCounter++
	fr.slots[key] = slot

	name := key.Name
	if key.Func != "" {
		name = key.Func + "." + key.Name
	}
	fr.mod.Globals = append(fr.mod.Globals, il.GlobalDecl{Name: name, Slot: slot, Class: typ.ValueClass()})
	return slot
}

// loadVar reads key's current value out of its flat-vector slot.
func (fr *frame) loadVar(blk *il.Block, key symtab.Key, typ types.Descriptor) il.Value {
	slot := fr.slotOf(key, typ)
	addr := blk.CreateGlobalAddr(slot)
	return blk.CreateLoad(typ.ValueClass(), addr, typ.MemOp())
}

// storeVar writes val into key's flat-vector slot.
func (fr *frame) storeVar(blk *il.Block, key symtab.Key, typ types.Descriptor, val il.Value) {
	slot := fr.slotOf(key, typ)
	addr := blk.CreateGlobalAddr(slot)
	blk.CreateStore(addr, val, typ.MemOp())
}

// zero returns the value-class-appropriate zero/null constant for typ.
func (fr *frame) zero(typ types.Descriptor) il.Value {
	switch typ.ValueClass() {
	case types.D64, types.S32:
		return fr.ilFn.CreateConstFloat(typ.ValueClass(), 0)
	default:
		return fr.ilFn.CreateConstInt(typ.ValueClass(), 0)
	}
}

// widen sign/zero-extends or float-widens v (currently of class from) up to
// class to, per the printing and call-argument widening rule: a w32 value
// must be sign-extended to l64 before any runtime call that expects a
// 64-bit argument, and single must be widened to double the same way.
func (fr *frame) widen(blk *il.Block, v il.Value, signed bool, to types.ValueClass) il.Value {
	if v.Class() == to {
		return v
	}
	switch {
	case v.Class() == types.W32 && to == types.L64:
		if signed {
			return blk.CreateExtSW(v)
		}
		return blk.CreateExtUW(v)
	case v.Class() == types.S32 && to == types.D64:
		return blk.CreateExtS(v)
	default:
		return v
	}
}

// coerceTo lowers v (of static type from) to the representation static
// type to requires, applying the conversions CheckCoercion's classification
// implies: integer widening via sign or zero extension (a narrowing integer
// coercion is returned unchanged, without an instruction), int<->float via
// the StoSI/DtoSI/SWtoF/SLtoF family, float widen/narrow via ExtS/TruncD.
// Identical classes with differing Descriptors (e.g. Int32 -> UInt32) need
// no instruction at all; the bit pattern is already correct.
func (fr *frame) coerceTo(blk *il.Block, v il.Value, from, to types.Descriptor) il.Value {
	fc, tc := from.ValueClass(), to.ValueClass()
	if fc == tc {
		return v
	}

	switch {
	case from.IsInteger() && to.IsInteger():
		return fr.widen(blk, v, from.Has(types.Signed), tc)

	case from.IsInteger() && to.IsFloat():
		iv := v
		if fc == types.W32 {
			iv = fr.widen(blk, v, from.Has(types.Signed), types.L64)
		}
		f := blk.CreateSLtoF(iv)
		if tc == types.S32 {
			return blk.CreateTruncD(f)
		}
		return f

	case from.IsFloat() && to.IsInteger():
		// CreateDtoSI always yields an l64 result; narrowing to a smaller
		// integer target happens at the store's typed width, not here (the
		// il package has no dedicated integer-narrowing op, only the
		// widening Ext* family).
		f := v
		if fc == types.S32 {
			f = blk.CreateExtS(v)
		}
		return blk.CreateDtoSI(f)

	case from.IsFloat() && to.IsFloat():
		if fc == types.S32 && tc == types.D64 {
			return blk.CreateExtS(v)
		}
		return blk.CreateTruncD(v)

	default:
		return v
	}
}
