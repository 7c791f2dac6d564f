// Package diag implements the compiler's five-kind error taxonomy and a
// thread-safe accumulator for collecting diagnostics across a phase, with
// typed error kinds and per-message classification.
package diag

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind is one of the five error kinds: Syntax, Semantic, Codegen, Backend,
// or Internal.
type Kind int

// MessageKind further classifies a Semantic diagnostic by the specific
// failure it names (undeclared identifier, type mismatch, and so on).
type MessageKind string

// Diagnostic is one reported error or warning.
type Diagnostic struct {
	Kind    Kind
	Message MessageKind // Empty for Syntax/Backend/Internal diagnostics.
	File    string
	Line    int
	Text    string
	Warn    bool
}

// Bag accumulates diagnostics across a compilation phase. It is safe for
// concurrent use by parallel per-function workers.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	SyntaxErr Kind = iota
	SemanticErr
	CodegenErr
	BackendErr
	InternalErr
)

const (
	UndeclaredType      MessageKind = "UndeclaredType"
	DuplicateSymbol     MessageKind = "DuplicateSymbol"
	TypeMismatch        MessageKind = "TypeMismatch"
	UnknownFunction     MessageKind = "UnknownFunction"
	ArityMismatch       MessageKind = "ArityMismatch"
	BadJumpTarget       MessageKind = "BadJumpTarget"
	ExitOutsideLoop     MessageKind = "ExitOutsideLoop"
	ReturnOutsideGosub  MessageKind = "ReturnOutsideGosub"
	InvalidForPairing   MessageKind = "InvalidForPairing"
	UnresolvedReference MessageKind = "UnresolvedReference"
)

// -------------------
// ----- globals -----
// -------------------

var kindNames = [...]string{"Syntax", "Semantic", "Codegen", "Backend", "Internal"}

// ---------------------
// ----- functions -----
// ---------------------

// String returns a print-friendly name for Kind k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag { return &Bag{} }

// Add appends a Diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

// Errorf appends a non-warning Diagnostic built from a format string.
func (b *Bag) Errorf(kind Kind, msg MessageKind, file string, line int, format string, a ...interface{}) {
	b.Add(Diagnostic{Kind: kind, Message: msg, File: file, Line: line, Text: fmt.Sprintf(format, a...)})
}

// Warnf appends a warning Diagnostic built from a format string.
func (b *Bag) Warnf(kind Kind, msg MessageKind, file string, line int, format string, a ...interface{}) {
	b.Add(Diagnostic{Kind: kind, Message: msg, File: file, Line: line, Text: fmt.Sprintf(format, a...), Warn: true})
}

// HasErrors reports whether any non-warning Diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if !d.Warn {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics, warnings included.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// All returns a stable-ordered copy (by line, then report order) of every
// recorded diagnostic.
func (b *Bag) All() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Print writes every diagnostic to standard error in the `file:line: <kind>: <message>`
// form, coloring errors red and warnings yellow when the destination is a
// terminal.
func (b *Bag) Print() {
	errCol := color.New(color.FgRed, color.Bold)
	warnCol := color.New(color.FgYellow, color.Bold)
	for _, d := range b.All() {
		line := fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Kind, d.Text)
		if d.Warn {
			_, _ = warnCol.Fprintln(os.Stderr, line)
		} else {
			_, _ = errCol.Fprintln(os.Stderr, line)
		}
	}
}

// Internal wraps an invariant violation with a stack fingerprint and
// returns it as an error. Internal errors abort the process with a
// non-zero exit and a stack fingerprint rather than a normal diagnostic.
func Internal(format string, a ...interface{}) error {
	return errors.WithStack(fmt.Errorf(format, a...))
}

// Fingerprint renders the stack trace carried by an error produced by
// Internal, or the bare error message if none is attached.
func Fingerprint(err error) string {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := err.(stackTracer); ok {
		return fmt.Sprintf("%s\n%+v", err, st.StackTrace())
	}
	return err.Error()
}
