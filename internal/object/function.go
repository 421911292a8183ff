package object

import "morpho/internal/value"

// OptionalParam describes one optional parameter: its symbol and
// the index into the function's constant table holding its default.
type OptionalParam struct {
	Symbol       value.Value
	DefaultConst int
}

// UpvalueProto describes how a CLOSURE instruction should capture one of
// a function's upvalues: either from a register local to the
// enclosing frame, or forwarded from an upvalue already captured by the
// enclosing closure.
type UpvalueProto struct {
	IsLocal bool
	Slot    int
}

// FunctionObject is a compiled function prototype. Its code lives
// in the owning Program's single instruction array; Entry
// is the index of its first instruction.
type FunctionObject struct {
	Object
	Name         string
	Entry        int
	Constants    []value.Value
	NumParams    int
	Optionals    []OptionalParam
	VariadicSlot int // -1 if the function has no variadic parameter
	NumRegisters int
	Upvalues     []UpvalueProto
}

func NewFunction(name string, entry int) *FunctionObject {
	return &FunctionObject{
		Object:       NewHeader(TypeFunction),
		Name:         name,
		Entry:        entry,
		VariadicSlot: -1,
	}
}

func (f *FunctionObject) ObjString() string {
	if f.Name == "" {
		return "<fn>"
	}
	return "<fn " + f.Name + ">"
}

// Mark reports the function's constant table so the collector keeps any
// object constants (nested function prototypes, interned symbols that
// happen to be managed rather than program-bound, etc.) alive.
func (f *FunctionObject) Mark(m Marker) {
	for _, c := range f.Constants {
		m.MarkValue(c)
	}
	for _, o := range f.Optionals {
		m.MarkValue(o.Symbol)
	}
}

func (f *FunctionObject) Arity() int { return f.NumParams }

// ClosureObject pairs a function prototype with its captured upvalues.
type ClosureObject struct {
	Object
	Function *FunctionObject
	Upvalues []*UpvalueObject
}

func NewClosure(fn *FunctionObject) *ClosureObject {
	return &ClosureObject{
		Object:   NewHeader(TypeClosure),
		Function: fn,
		Upvalues: make([]*UpvalueObject, len(fn.Upvalues)),
	}
}

func (c *ClosureObject) ObjString() string { return c.Function.ObjString() }

func (c *ClosureObject) Mark(m Marker) {
	m.MarkObject(c.Function)
	for _, u := range c.Upvalues {
		if u != nil {
			m.MarkObject(u)
		}
	}
}
