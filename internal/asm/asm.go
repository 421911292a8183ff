// Package asm is a small bytecode assembler: a programmatic builder for
// *program.Program values, used by tests and the CLI's demo programs.
// There is no lexer, parser, or compiler here; building a program by
// hand with this package stands in for a front end.
package asm

import (
	"morpho/internal/bytecode"
	"morpho/internal/object"
	"morpho/internal/program"
	"morpho/internal/value"
)

// FuncBuilder assembles one function prototype's instructions and
// constant table.
type FuncBuilder struct {
	prog *Builder
	fn   *object.FunctionObject
}

// Builder assembles a Program: a shared instruction array plus one or
// more function prototypes emitting into it.
type Builder struct {
	prog *program.Program
}

// New starts a fresh program.
func New() *Builder {
	return &Builder{prog: program.New()}
}

// Program returns the assembled program. Call after every function has
// finished emitting instructions.
func (b *Builder) Program() *program.Program { return b.prog }

// Func declares a new function prototype with the given parameter count
// and register count, returning a builder for its body. entry is fixed
// at the current end of the shared instruction array.
func (b *Builder) Func(name string, numParams, numRegisters int) *FuncBuilder {
	fn := object.NewFunction(name, len(b.prog.Instructions))
	fn.NumParams = numParams
	fn.NumRegisters = numRegisters
	fn.VariadicSlot = -1
	b.prog.Bind(fn)
	return &FuncBuilder{prog: b, fn: fn}
}

// SetEntry marks fb's function as the program's entry point.
func (fb *FuncBuilder) SetEntry() *FuncBuilder {
	fb.prog.prog.Entry = fb.fn
	return fb
}

// Function returns the assembled prototype, usable as a CLOSURE constant
// in an enclosing function.
func (fb *FuncBuilder) Function() *object.FunctionObject { return fb.fn }

// Const appends v to this function's constant table, returning its
// index for LCT/CLOSURE/PUSHERR/LPR/SPR operands. Equal values are not
// shared: each call adds a new entry.
func (fb *FuncBuilder) Const(v value.Value) uint16 {
	fb.fn.Constants = append(fb.fn.Constants, v)
	return uint16(len(fb.fn.Constants) - 1)
}

// ConstString adds a new program-bound string constant and returns its
// index.
func (fb *FuncBuilder) ConstString(s string) uint16 {
	str := object.NewString(s)
	fb.prog.prog.Bind(str)
	return fb.Const(value.Object(str))
}

func (fb *FuncBuilder) emit(i bytecode.Instruction) int {
	fb.prog.prog.Instructions = append(fb.prog.prog.Instructions, i)
	return len(fb.prog.prog.Instructions) - 1
}

func (fb *FuncBuilder) ABC(op bytecode.OpCode, a, b, c uint8) int {
	return fb.emit(bytecode.ABC(op, a, b, c))
}

func (fb *FuncBuilder) ABx(op bytecode.OpCode, a uint8, bx uint16) int {
	return fb.emit(bytecode.ABx(op, a, bx))
}

func (fb *FuncBuilder) AsBx(op bytecode.OpCode, a uint8, sbx int32) int {
	return fb.emit(bytecode.AsBx(op, a, sbx))
}

// Label returns the index the next emitted instruction will occupy,
// usable to compute a branch offset with PatchSBx.
func (fb *FuncBuilder) Label() int { return len(fb.prog.prog.Instructions) }

// PatchSBx rewrites the sBx field of the instruction at idx to branch to
// target. The dispatch loop adds sBx to the branch instruction's own pc
// (not pc+1: B/BIF/BIFF/POPERR never fall through to an implicit next-pc
// increment the way a sequential instruction does), so the offset is
// target-idx, not target-(idx+1).
func (fb *FuncBuilder) PatchSBx(idx, target int) {
	old := fb.prog.prog.Instructions[idx]
	fb.prog.prog.Instructions[idx] = bytecode.AsBx(old.Op(), old.A(), int32(target-idx))
}

// DefineGlobal reserves a global slot by name, returning its index for
// LGL/SGL operands.
func (b *Builder) DefineGlobal(name string) uint16 {
	return uint16(b.prog.DefineGlobal(name))
}
