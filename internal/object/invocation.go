package object

import "morpho/internal/value"

// InvocationObject binds a receiver to a method, making the pair itself a
// first-class callable. A CALL whose target is an invocation unwraps it
// and places the receiver at r0.
type InvocationObject struct {
	Object
	Receiver value.Value
	Method   value.Value
}

func NewInvocation(receiver, method value.Value) *InvocationObject {
	return &InvocationObject{Object: NewHeader(TypeInvocation), Receiver: receiver, Method: method}
}

func (i *InvocationObject) ObjString() string { return "<invocation>" }

func (i *InvocationObject) Mark(m Marker) {
	m.MarkValue(i.Receiver)
	m.MarkValue(i.Method)
}

// NativeContext is the capability surface a BuiltinFn gets: it can
// allocate and bind new objects to the calling VM and raise errors
// through the VM's error interface rather than aborting. Defining this
// as a small interface here (rather than importing the interpreter
// package, which would cycle) lets a built-in function value be
// constructed without the object package depending on the interpreter
// at all.
type NativeContext interface {
	Bind(o value.Obj)
	Raise(id string, format string, args ...interface{}) error
}

// BuiltinFn is the native function ABI: args[0] is the receiver (nil for
// a free function), args[1:] are the call arguments.
type BuiltinFn func(ctx NativeContext, args []value.Value) (value.Value, error)

// BuiltinFunctionObject wraps a native function pointer. Built-in
// functions are statically allocated and never collected.
type BuiltinFunctionObject struct {
	Object
	Name string
	Fn   BuiltinFn
	// ArityMin/ArityMax bound the accepted argument count; ArityMax < 0
	// means unbounded (variadic built-in).
	ArityMin, ArityMax int
}

func NewBuiltinFunction(name string, arityMin, arityMax int, fn BuiltinFn) *BuiltinFunctionObject {
	b := &BuiltinFunctionObject{
		Object:   NewHeader(TypeBuiltinFunction),
		Name:     name,
		Fn:       fn,
		ArityMin: arityMin,
		ArityMax: arityMax,
	}
	b.Status = Unmanaged
	return b
}

func (b *BuiltinFunctionObject) ObjString() string { return "<builtin " + b.Name + ">" }
