// Package util provides small, dependency-free helpers shared by the CFG
// builder and IL emitter: unique name generation and a generic stack type,
// both instantiated per compilation rather than held as package globals:
// compiler state threads explicitly through a context struct instead of
// living in global mutable state.
package util

import (
	"fmt"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Namer hands out unique block labels and temp/register names for one
// function's worth of CFG construction or IL emission. It is safe for
// concurrent use so that per-function workers can each
// hold their own Namer without contention, or share one across a
// single-threaded compilation.
type Namer struct {
	mu       sync.Mutex
	blocks   int
	temps    int
	labels   map[string]int
}

// ---------------------
// ----- functions -----
// ---------------------

// NewNamer returns a ready-to-use Namer starting all counters at zero.
func NewNamer() *Namer {
	return &Namer{labels: make(map[string]int)}
}

// Block returns the next unique basic block id.
func (n *Namer) Block() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.blocks
	n.blocks++
	return id
}

// Temp returns the next unique temp/virtual-register name.
func (n *Namer) Temp() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.temps
	n.temps++
	return fmt.Sprintf("%%t%d", id)
}

// Label returns the next unique label with the given prefix, e.g.
// Label("for_header") -> "for_header0", then "for_header1".
func (n *Namer) Label(prefix string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.labels[prefix]
	n.labels[prefix] = i + 1
	return fmt.Sprintf("%s%d", prefix, i)
}

// MangleVar implements a uniform induction-variable mangling rule: a FOR
// induction variable (and, by extension, any function-local scalar living
// in a register rather than memory) is named "%var_<name>_<type>", regardless of which
// function declares it — eliminating the source compiler's inconsistent
// mangling defect.
func MangleVar(name, typeSuffix string) string {
	return fmt.Sprintf("%%var_%s_%s", name, typeSuffix)
}
