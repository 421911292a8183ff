// Package program implements the program image: the
// flat instruction array shared by every function prototype, the
// global-symbol intern table, and the debug-annotation stream that maps
// instruction indices back to source coordinates.
package program

import (
	"github.com/pkg/errors"

	"morpho/internal/bytecode"
	"morpho/internal/dict"
	"morpho/internal/object"
	"morpho/internal/value"
)

// Program is the artifact an assembler or (eventually) a compiler
// produces: one shared instruction array, a global-symbol intern table, a
// debug-annotation stream, and the count of global-variable slots the VM
// must allocate. Object constants and interned symbols it owns are
// program-bound and outlive any VM bound to this program.
type Program struct {
	Instructions []bytecode.Instruction
	Symbols      *dict.InternTable
	Debug        *DebugInfo
	Entry        *object.FunctionObject
	GlobalNames  []string
	GlobalCount  int

	bound value.Obj // head of the program-bound permanent list
}

// New returns an empty program ready to receive instructions.
func New() *Program {
	return &Program{
		Symbols: dict.NewInternTable(),
		Debug:   NewDebugInfo(),
	}
}

// InternSymbol returns the canonical string Value for s, sharing a single
// StringObject across every constant table that references it.
func (p *Program) InternSymbol(s string) value.Value {
	return p.Symbols.Intern(s, func(s string) value.Value {
		str := object.NewString(s)
		str.Interned = true
		p.Bind(str)
		return value.Object(str)
	})
}

// Bind links a program-bound object (a constant, an interned symbol)
// into the program's permanent list. Program-bound objects are always
// Unmanaged and are freed only when the program itself is destroyed.
func (p *Program) Bind(o value.Obj) {
	obj, ok := o.(interface{ Header() *object.Object })
	if !ok {
		return
	}
	h := obj.Header()
	h.Status = object.Unmanaged
	h.Next = p.bound
	p.bound = o
}

// DefineGlobal reserves the next global slot for name, returning its
// index.
func (p *Program) DefineGlobal(name string) int {
	idx := p.GlobalCount
	p.GlobalNames = append(p.GlobalNames, name)
	p.GlobalCount++
	return idx
}

// Validate checks the invariants a host embedder relies on before handing
// a program to interp.New: a set entry point and an instruction array it
// actually lives in. A program assembled from a corrupt or truncated
// bytecode image (e.g. one read off disk by a future loader) fails these
// checks rather than panicking the VM partway through execution, so
// program-load failure is reported the same way other host-boundary
// failures are: wrapped with errors.Wrap so the caller gets a stack trace
// alongside the message.
func (p *Program) Validate() error {
	if p.Entry == nil {
		return errors.New("program has no entry point")
	}
	if p.Entry.Entry < 0 || p.Entry.Entry >= len(p.Instructions) {
		return errors.Wrapf(errInvalidEntry, "entry function %q at instruction %d, program has %d instructions",
			p.Entry.Name, p.Entry.Entry, len(p.Instructions))
	}
	return nil
}

var errInvalidEntry = errors.New("malformed bytecode image: entry point out of range")
