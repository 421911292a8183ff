package object

import (
	"testing"

	"morpho/internal/value"
)

func TestClassResolveWalksSuperChain(t *testing.T) {
	base := NewClass("Base", nil)
	base.Methods.Set(value.Object(NewString("greet")), value.Int(1))

	derived := NewClass("Derived", base)
	derived.Methods.Set(value.Object(NewString("shout")), value.Int(2))

	if _, ok := derived.Resolve(value.Object(NewString("shout"))); !ok {
		t.Error("Resolve did not find a method defined directly on the class")
	}
	if _, ok := derived.Resolve(value.Object(NewString("missing"))); ok {
		t.Error("Resolve found a method that was never defined")
	}
}

func TestClassResolveOwnMethodShadowsSuper(t *testing.T) {
	base := NewClass("Base", nil)
	base.Methods.Set(value.Object(NewString("greet")), value.Int(1))

	derived := NewClass("Derived", base)
	derived.Methods.Set(value.Object(NewString("greet")), value.Int(2))

	v, ok := derived.Resolve(value.Object(NewString("greet")))
	if !ok {
		t.Fatal("Resolve did not find greet")
	}
	if v.AsInt() != 2 {
		t.Errorf("Resolve returned %v, want the derived class's own override (2)", v)
	}
}

func TestInstanceFieldsIndependentOfClass(t *testing.T) {
	class := NewClass("Point", nil)
	a := NewInstance(class)
	b := NewInstance(class)

	a.Fields.Set(value.Object(NewString("x")), value.Int(1))
	if _, ok := b.Fields.Get(value.Object(NewString("x"))); ok {
		t.Fatal("instances share a field table")
	}
	if got := a.ObjString(); got != "<Point instance>" {
		t.Errorf("ObjString() = %q, want <Point instance>", got)
	}
}
