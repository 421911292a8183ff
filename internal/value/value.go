// Package value implements the tagged value representation at the heart
// of the runtime. Rather than NaN-boxing a pointer into a
// raw uint64 the way the register VM this package descends from did, a
// Value here is a disciplined sum type: a small tag plus separate int32,
// float64 and object-reference fields, which do not overlap. The
// interpreter never depends on the bit
// layout, only on the accessors below.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the variant a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Obj is satisfied by *object.Object; it is declared here (instead of
// importing package object) to avoid an import cycle, since object.Object
// needs to hold Values in its concrete types.
type Obj interface {
	// ObjKind reports the heap object's type-dispatch record name, used
	// only for diagnostics/printing from this package.
	ObjKind() string
	// ObjEqual performs content equality when the object's registered
	// type defines one (e.g. strings); ok is false when identity equality
	// should be used instead.
	ObjEqual(other Obj) (equal bool, ok bool)
	// ObjString renders a default textual representation.
	ObjString() string
}

// Value is the tagged word every register, constant, and global holds.
// nil, the two booleans, a 32-bit signed integer, an IEEE double, and a
// tagged heap reference are its five variants.
type Value struct {
	kind Kind
	i    int32
	f    float64
	obj  Obj
}

var Nil = Value{kind: KindNil}
var True = Value{kind: KindBool, i: 1}
var False = Value{kind: KindBool, i: 0}

func Int(i int32) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}
func Object(o Obj) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }
func (v Value) IsBool() bool { return v.kind == KindBool }
func (v Value) IsInt() bool { return v.kind == KindInt }
func (v Value) IsFloat() bool { return v.kind == KindFloat }
func (v Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}
func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) AsBool() bool { return v.i != 0 }
func (v Value) AsInt() int32 { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsObject() Obj { return v.obj }

// AsFloat64 promotes an int or float Value to float64; callers must have
// already checked IsNumber.
func (v Value) AsFloat64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Truthy reports whether v counts as true in a branch condition: nil and
// false are false; everything else, including 0 and 0.0, is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.i != 0
	default:
		return true
	}
}

// Equal implements equality: same-typed values compare structurally,
// numeric comparisons promote int<->float, and objects are identity-equal
// unless their registered type defines content equality (strings do).
func Equal(a, b Value) bool {
	if a.kind == KindInt && b.kind == KindInt {
		return a.i == b.i
	}
	if (a.kind == KindInt || a.kind == KindFloat) && (b.kind == KindInt || b.kind == KindFloat) {
		return a.AsFloat64() == b.AsFloat64()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.i == b.i
	case KindObject:
		if a.obj == b.obj {
			return true
		}
		if eq, ok := a.obj.ObjEqual(b.obj); ok {
			return eq
		}
		return false
	}
	return false
}

// ErrNotOrdered is returned by Compare when asked to order non-numeric
// values; callers surface this as the InvldOp error.
var ErrNotOrdered = fmt.Errorf("value: comparison only defined on numeric values")

// Compare orders two values. Ordering is defined only on numeric values;
// any other pairing raises InvldOp via ErrNotOrdered.
func Compare(a, b Value) (int, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return 0, ErrNotOrdered
	}
	if a.kind == KindInt && b.kind == KindInt {
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		default:
			return 0, nil
		}
	}
	af, bf := a.AsFloat64(), b.AsFloat64()
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

// String renders the default textual representation of a Value. PRINT
// writes this representation for every value; it does not call a
// class's print method.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		if math.IsInf(v.f, 1) {
			return "inf"
		}
		if math.IsInf(v.f, -1) {
			return "-inf"
		}
		if math.IsNaN(v.f) {
			return "nan"
		}
		return fmt.Sprintf("%g", v.f)
	case KindObject:
		return v.obj.ObjString()
	}
	return "?"
}

// TypeName reports the scripting-level type name of a Value, used by
// TYPEOF-style diagnostics and error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObject:
		return v.obj.ObjKind()
	}
	return "unknown"
}
