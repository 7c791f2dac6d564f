// Package runtime models the fixed C-ABI surface the IL emitter targets:
// one Helper entry per runtime function, looked up by symbolic name when
// lowering a statement or expression to a call instruction. It also carries
// the backend capability table fused multiply-add lowering is gated on.
package runtime

import "fbc/internal/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Helper describes one runtime C function's call signature, as the emitter
// needs it to build a well-typed il.Instr of OpCall.
type Helper struct {
	Name   string
	Params []types.Descriptor
	Return types.Descriptor
}

// Target names one backend identifier from the -t flag's closed set.
type Target string

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Arm64Apple Target = "arm64_apple"
	Amd64Sysv  Target = "amd64_sysv"
	Amd64Apple Target = "amd64_apple"
	RV64       Target = "rv64"
)

// -------------------
// ----- globals -----
// -------------------

var (
	descPtr  = types.Descriptor{Base: types.UserDefined} // opaque descriptor pointer (string/array header)
	descI64  = types.Descriptor{Base: types.Int64, Attrs: types.Signed}
	descD64  = types.Descriptor{Base: types.Double}
	descVoid = types.Descriptor{Base: types.Void}
)

// Catalogue is the complete set of runtime helpers the emitter may call,
// indexed by symbolic name, matching spec.md §6.2 verbatim.
var Catalogue = map[string]Helper{
	// Strings.
	"string_new_utf8":    {Name: "string_new_utf8", Params: []types.Descriptor{descPtr}, Return: descPtr},
	"string_retain":      {Name: "string_retain", Params: []types.Descriptor{descPtr}, Return: descPtr},
	"string_release":     {Name: "string_release", Params: []types.Descriptor{descPtr}, Return: descVoid},
	"string_clone":       {Name: "string_clone", Params: []types.Descriptor{descPtr}, Return: descPtr},
	"string_mid_assign":  {Name: "string_mid_assign", Params: []types.Descriptor{descPtr, descI64, descI64, descPtr}, Return: descVoid},
	"string_slice_assign": {Name: "string_slice_assign", Params: []types.Descriptor{descPtr, descI64, descI64, descPtr}, Return: descVoid},
	"string_concat":      {Name: "string_concat", Params: []types.Descriptor{descPtr, descPtr}, Return: descPtr},
	"string_compare":     {Name: "string_compare", Params: []types.Descriptor{descPtr, descPtr}, Return: descI64},

	// Arrays. The second pointer in array_get_address/array_new/array_redim*
	// addresses a small packed int64 buffer (one cell per array rank) the
	// emitter materializes with a stack CreateAlloca; there is no fixed arity
	// here, only what the buffer's own rank says.
	"array_new":             {Name: "array_new", Params: []types.Descriptor{descI64, descPtr, descI64}, Return: descPtr},
	"array_get_address":     {Name: "array_get_address", Params: []types.Descriptor{descPtr, descPtr}, Return: descPtr},
	"array_redim":           {Name: "array_redim", Params: []types.Descriptor{descPtr, descPtr}, Return: descVoid},
	"array_redim_preserve":  {Name: "array_redim_preserve", Params: []types.Descriptor{descPtr, descPtr}, Return: descVoid},
	"array_erase":           {Name: "array_erase", Params: []types.Descriptor{descPtr}, Return: descVoid},
	"basic_bounds_error":    {Name: "basic_bounds_error", Params: []types.Descriptor{descI64, descI64, descI64}, Return: descVoid},

	// Globals.
	"basic_global_init":    {Name: "basic_global_init", Params: []types.Descriptor{descI64}, Return: descVoid},
	"basic_global_base":    {Name: "basic_global_base", Params: nil, Return: descPtr},
	"basic_global_cleanup": {Name: "basic_global_cleanup", Params: nil, Return: descVoid},

	// Numeric I/O.
	"basic_print_int":     {Name: "basic_print_int", Params: []types.Descriptor{descI64}, Return: descVoid},
	"basic_print_double":  {Name: "basic_print_double", Params: []types.Descriptor{descD64}, Return: descVoid},
	"basic_print_string":  {Name: "basic_print_string", Params: []types.Descriptor{descPtr}, Return: descVoid},
	"basic_print_newline": {Name: "basic_print_newline", Params: nil, Return: descVoid},
	"basic_input_int":     {Name: "basic_input_int", Params: nil, Return: descI64},
	"basic_input_double":  {Name: "basic_input_double", Params: nil, Return: descD64},
	"basic_input_string":  {Name: "basic_input_string", Params: nil, Return: descPtr},

	// Data segment.
	"basic_data_read_int":    {Name: "basic_data_read_int", Params: nil, Return: descI64},
	"basic_data_read_double": {Name: "basic_data_read_double", Params: nil, Return: descD64},
	"basic_data_read_string": {Name: "basic_data_read_string", Params: nil, Return: descPtr},

	// Process lifecycle.
	"basic_runtime_init":    {Name: "basic_runtime_init", Params: nil, Return: descVoid},
	"basic_runtime_cleanup": {Name: "basic_runtime_cleanup", Params: nil, Return: descVoid},
	"basic_end":             {Name: "basic_end", Params: []types.Descriptor{descI64}, Return: descVoid},

	// Exceptions.
	"basic_throw":      {Name: "basic_throw", Params: []types.Descriptor{descI64}, Return: descVoid},
	"basic_try_enter":  {Name: "basic_try_enter", Params: []types.Descriptor{descPtr}, Return: descVoid},
	"basic_try_leave":  {Name: "basic_try_leave", Params: nil, Return: descVoid},

	// POW intrinsic, not part of the C-ABI listing but invoked the same way.
	"pow": {Name: "pow", Params: []types.Descriptor{descD64, descD64}, Return: descD64},
}

// fusionCapable lists the -t TARGET identifiers whose backend is known to
// lower fused MADD/FMADD natively: the three targets backed by a real FMA
// instruction (ARMv8's FMADD, x86-64's FMA3 on both calling conventions).
// rv64 is excluded because this compiler makes no assumption that the
// target machine carries the M/F extension's FMA instructions.
var fusionCapable = map[Target]bool{
	Arm64Apple: true,
	Amd64Sysv:  true,
	Amd64Apple: true,
	RV64:       false,
}

// ---------------------
// ----- functions -----
// ---------------------

// Lookup resolves a runtime helper by symbolic name.
func Lookup(name string) (Helper, bool) {
	h, ok := Catalogue[name]
	return h, ok
}

// SupportsFusion reports whether Target t's backend natively lowers fused
// multiply-add instructions, gating the emitter's optional fusion pass.
func SupportsFusion(t Target) bool {
	return fusionCapable[t]
}

// ValidTarget reports whether name names one of the four supported -t
// TARGET identifiers.
func ValidTarget(name string) (Target, bool) {
	switch Target(name) {
	case Arm64Apple, Amd64Sysv, Amd64Apple, RV64:
		return Target(name), true
	default:
		return "", false
	}
}
