package il

import (
	"fmt"

	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Const is an immediate value materialized directly as an operand, without
// its own instruction slot in a block.
type Const struct {
	id    int
	class types.ValueClass
	IVal  int64
	FVal  float64
	IsF   bool
}

// ParamValue is a reference to one of the owning Function's parameters,
// usable as an operand anywhere inside that function's blocks.
type ParamValue struct {
	id    int
	Name  string
	class types.ValueClass
}

// ---------------------
// ----- functions -----
// ---------------------

// ID returns Const c's identity, used only for Value-interface conformance;
// constants are never referenced by id, only by value.
func (c *Const) ID() int { return c.id }

// Class returns the value class Const c was materialized at.
func (c *Const) Class() types.ValueClass { return c.class }

// String returns Const c's literal textual form.
func (c *Const) String() string {
	if c.IsF {
		return fmt.Sprintf("%g", c.FVal)
	}
	return fmt.Sprintf("%d", c.IVal)
}

// ID returns ParamValue p's function-local value id.
func (p *ParamValue) ID() int { return p.id }

// Class returns the value class ParamValue p carries.
func (p *ParamValue) Class() types.ValueClass { return p.class }

// String returns ParamValue p's surface name.
func (p *ParamValue) String() string { return "%" + p.Name }
