package il

import (
	"fmt"
	"strings"

	"fbc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// GlobalDecl is one entry in the runtime-allocated global vector: a slot
// index, a value class for the emitter's own bookkeeping (the runtime
// itself stores every slot as an untyped 64-bit cell), and its source name
// for diagnostics and the -S symbol dump.
type GlobalDecl struct {
	Name  string
	Slot  int
	Class types.ValueClass
}

// DataDecl is one preprocessed DATA segment entry, read at run time via
// basic_data_read_int/double/string.
type DataDecl struct {
	Kind types.BaseType
	IVal int64
	FVal float64
	SVal string
}

// StringDecl is one interned string literal, materialized as a constant
// UTF-8 byte sequence addressed by symbolic name from OpDataAddr. Separate
// from DataDecl, which models the sequential READ/DATA segment rather than
// addressable constants.
type StringDecl struct {
	Sym string
	Val string
}

// Module is the root of an IL compilation unit: the global vector layout,
// the DATA segment, every interned string literal, and every function body
// (including the main program, emitted as the function named "main").
type Module struct {
	Name      string
	Globals   []GlobalDecl
	Data      []DataDecl
	Strings   []StringDecl
	strIndex  map[string]string
	functions []*Function
	seq       int
}

// ---------------------
// ----- functions -----
// ---------------------

// NewModule returns an empty Module named name.
func NewModule(name string) *Module {
	if name == "" {
		name = "fbc module"
	}
	return &Module{Name: name}
}

// CreateFunction appends a new, empty Function to Module m.
func (m *Module) CreateFunction(name string, ret types.ValueClass, isVoid bool) *Function {
	f := &Function{m: m, Name: name, Return: ret, IsVoid: isVoid}
	m.functions = append(m.functions, f)
	return f
}

// Functions returns every function declared in Module m, in creation order.
func (m *Module) Functions() []*Function { return m.functions }

// InternString returns the symbolic name of val's entry in Module m's string
// pool, creating one on first sight. Identical literals share one entry.
func (m *Module) InternString(val string) string {
	if m.strIndex == nil {
		m.strIndex = make(map[string]string)
	}
	if sym, ok := m.strIndex[val]; ok {
		return sym
	}
	sym := fmt.Sprintf(".str%d", len(m.Strings))
	m.Strings = append(m.Strings, StringDecl{Sym: sym, Val: val})
	m.strIndex[val] = sym
	return sym
}

// getID returns a module-scoped unique id, used for Const/ParamValue
// created outside of any particular function's own counter (none currently
// are, but this mirrors the teacher's Module.getId for symmetry).
func (m *Module) getID() int {
	id := m.seq
	m.seq++
	return id
}

// String returns the textual IL rendering of the whole Module m: globals,
// then DATA, then every function.
func (m *Module) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("; module %s\n\n", m.Name))
	for _, g := range m.Globals {
		sb.WriteString(fmt.Sprintf("global %s: %s = slot %d\n", g.Name, g.Class, g.Slot))
	}
	if len(m.Globals) > 0 {
		sb.WriteRune('\n')
	}
	for i, d := range m.Data {
		sb.WriteString(fmt.Sprintf("data %d: %s\n", i, d.Kind))
	}
	if len(m.Data) > 0 {
		sb.WriteRune('\n')
	}
	for _, s := range m.Strings {
		sb.WriteString(fmt.Sprintf("string %s = %q\n", s.Sym, s.Val))
	}
	if len(m.Strings) > 0 {
		sb.WriteRune('\n')
	}
	for _, f := range m.functions {
		sb.WriteString(f.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}
