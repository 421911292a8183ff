package object

import "morpho/internal/value"

// UpvalueObject is open while the variable it captures still lives on a
// VM's stack, and closed once that variable's frame returns. Stack is a
// pointer to the owning VM's stack slice header; holding the
// pointer-to-slice rather than a raw element pointer means a stack grow
// (which reallocates the backing array but preserves each element's
// logical index) never invalidates an open upvalue: there is no pointer
// to rebase, only an index into whatever array Stack currently points at.
type UpvalueObject struct {
	Object
	Stack      *[]value.Value
	StackIndex int
	Open       bool
	Closed     value.Value
}

func NewOpenUpvalue(stack *[]value.Value, index int) *UpvalueObject {
	return &UpvalueObject{
		Object:     NewHeader(TypeUpvalue),
		Stack:      stack,
		StackIndex: index,
		Open:       true,
	}
}

// Get dereferences the upvalue.
func (u *UpvalueObject) Get() value.Value {
	if u.Open {
		return (*u.Stack)[u.StackIndex]
	}
	return u.Closed
}

// Set writes through the upvalue.
func (u *UpvalueObject) Set(v value.Value) {
	if u.Open {
		(*u.Stack)[u.StackIndex] = v
		return
	}
	u.Closed = v
}

// Close copies the current value into the upvalue's own cell and
// retargets it there, per CLOSEUP/return semantics.
func (u *UpvalueObject) Close() {
	if !u.Open {
		return
	}
	u.Closed = (*u.Stack)[u.StackIndex]
	u.Open = false
}

func (u *UpvalueObject) ObjString() string { return "<upvalue>" }

func (u *UpvalueObject) Mark(m Marker) {
	if !u.Open {
		m.MarkValue(u.Closed)
	}
}
