package il

import (
	"fmt"
	"strings"

	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Function is one IL function: a return class, a parameter list and a
// sequence of basic blocks. The main program is emitted as a Function named
// "main" returning Void, matching the runtime's process-entry convention.
type Function struct {
	m        *Module
	seq      int
	Name     string
	Export   bool
	Return   types.ValueClass
	IsVoid   bool
	Params   []*ParamValue
	Blocks   []*Block
	Temps    int // Total temporaries allocated, for the frame-sizing pass.
}

// ---------------------
// ----- functions -----
// ---------------------

func (f *Function) getID() int {
	id := f.seq
	f.seq++
	f.Temps++
	return id
}

// CreateParam appends a new parameter to Function f, in declaration order.
func (f *Function) CreateParam(name string, class types.ValueClass) *ParamValue {
	p := &ParamValue{id: f.getID(), Name: name, class: class}
	f.Params = append(f.Params, p)
	return p
}

// CreateBlock appends a new, empty basic block to Function f.
func (f *Function) CreateBlock(label string) *Block {
	b := &Block{f: f, id: f.getID(), Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// CreateConstInt returns a Const carrying an integer immediate at value
// class class.
func (f *Function) CreateConstInt(class types.ValueClass, v int64) *Const {
	return &Const{id: f.getID(), class: class, IVal: v}
}

// CreateConstFloat returns a Const carrying a floating point immediate at
// value class class (S32 or D64).
func (f *Function) CreateConstFloat(class types.ValueClass, v float64) *Const {
	return &Const{id: f.getID(), class: class, FVal: v, IsF: true}
}

// String returns the textual IL rendering of Function f: its signature
// followed by every block in emission order.
func (f *Function) String() string {
	sb := strings.Builder{}
	sb.WriteString("function ")
	if f.Export {
		sb.WriteString("export ")
	}
	sb.WriteString(f.Name)
	sb.WriteRune('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", p.Name, p.class))
	}
	sb.WriteString("): ")
	if f.IsVoid {
		sb.WriteString("void")
	} else {
		sb.WriteString(f.Return.String())
	}
	sb.WriteString(" {\n")
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}
