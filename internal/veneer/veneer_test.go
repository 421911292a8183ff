package veneer

import (
	"fmt"
	"testing"

	"morpho/internal/interp"
	"morpho/internal/object"
	"morpho/internal/value"
)

type fakeCtx struct {
	bound []value.Obj
}

func (c *fakeCtx) Bind(o value.Obj) { c.bound = append(c.bound, o) }
func (c *fakeCtx) Raise(id string, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", id, fmt.Sprintf(format, args...))
}

func method(cls *object.ClassObject, name string) object.BuiltinFn {
	v, _ := cls.Methods.Get(value.Object(object.NewString(name)))
	return v.AsObject().(*object.BuiltinFunctionObject).Fn
}

func TestRegisterDefaultsWiresAllCoreTypes(t *testing.T) {
	RegisterDefaults()
	for _, typ := range []object.TypeID{
		object.TypeList, object.TypeDictionary, object.TypeArray, object.TypeRange, object.TypeString,
	} {
		if _, ok := interp.VeneerClassFor(typ); !ok {
			t.Errorf("VeneerClassFor(%v) not registered after RegisterDefaults", typ)
		}
	}
}

func TestListCountAppendPop(t *testing.T) {
	cls := listClass()
	ctx := &fakeCtx{}
	l := object.NewList(0)
	recv := value.Object(l)

	if _, err := method(cls, "append")(ctx, []value.Value{recv, value.Int(1), value.Int(2)}); err != nil {
		t.Fatalf("append error: %v", err)
	}
	count, err := method(cls, "count")(ctx, []value.Value{recv})
	if err != nil || count.AsInt() != 2 {
		t.Fatalf("count = %v, %v; want 2, nil", count, err)
	}
	popped, err := method(cls, "pop")(ctx, []value.Value{recv})
	if err != nil || popped.AsInt() != 2 {
		t.Fatalf("pop = %v, %v; want 2, nil", popped, err)
	}
}

func TestListPopEmptyRaises(t *testing.T) {
	cls := listClass()
	ctx := &fakeCtx{}
	l := object.NewList(0)
	if _, err := method(cls, "pop")(ctx, []value.Value{value.Object(l)}); err == nil {
		t.Fatal("pop on an empty list did not error")
	}
}

func TestListEnumerateNegativeReturnsLength(t *testing.T) {
	cls := listClass()
	ctx := &fakeCtx{}
	l := object.NewListFrom([]value.Value{value.Int(9), value.Int(8)})
	v, err := method(cls, "enumerate")(ctx, []value.Value{value.Object(l), value.Int(-1)})
	if err != nil || v.AsInt() != 2 {
		t.Fatalf("enumerate(-1) = %v, %v; want 2, nil", v, err)
	}
}

func TestListCloneIsIndependentAndBound(t *testing.T) {
	cls := listClass()
	ctx := &fakeCtx{}
	l := object.NewListFrom([]value.Value{value.Int(1)})
	clone, err := method(cls, "clone")(ctx, []value.Value{value.Object(l)})
	if err != nil {
		t.Fatalf("clone error: %v", err)
	}
	if len(ctx.bound) != 1 {
		t.Fatalf("clone did not Bind the result, len(bound) = %d", len(ctx.bound))
	}
	if clone.AsObject() == l {
		t.Fatal("clone returned the same object, not a copy")
	}
}

func TestDictionaryUnionAndDifference(t *testing.T) {
	cls := dictClass()
	ctx := &fakeCtx{}
	a := object.NewDictionary()
	a.Table.Set(value.Int(1), value.Int(1))
	b := object.NewDictionary()
	b.Table.Set(value.Int(2), value.Int(2))

	union, err := method(cls, "+")(ctx, []value.Value{value.Object(a), value.Object(b)})
	if err != nil {
		t.Fatalf("+ error: %v", err)
	}
	if union.AsObject().(*object.DictionaryObject).Table.Count() != 2 {
		t.Fatal("dictionary union did not merge both tables")
	}

	diff, err := method(cls, "-")(ctx, []value.Value{value.Object(a), value.Object(b)})
	if err != nil {
		t.Fatalf("- error: %v", err)
	}
	if diff.AsObject().(*object.DictionaryObject).Table.Count() != 1 {
		t.Fatal("dictionary difference did not remove the shared key")
	}
}

func TestDictionarySetOpRejectsNonDictionaryOperand(t *testing.T) {
	cls := dictClass()
	ctx := &fakeCtx{}
	a := object.NewDictionary()
	if _, err := method(cls, "+")(ctx, []value.Value{value.Object(a), value.Int(1)}); err == nil {
		t.Fatal("+ with a non-dictionary operand did not error")
	}
}

func TestStringIndexAssignProducesNewValue(t *testing.T) {
	cls := stringClass()
	ctx := &fakeCtx{}
	s := object.NewString("hello")
	result, err := method(cls, "[]=")(ctx, []value.Value{value.Object(s), value.Int(0), value.Object(object.NewString("H"))})
	if err != nil {
		t.Fatalf("[]= error: %v", err)
	}
	if result.AsObject() == s {
		t.Fatal("[]= mutated the receiver in place instead of returning a new string")
	}
	if got := result.AsObject().(*object.StringObject).Value; got != "Hello" {
		t.Fatalf("[]= result = %q, want %q", got, "Hello")
	}
	if s.Value != "hello" {
		t.Fatalf("original string mutated: %q", s.Value)
	}
}

func TestRangeEnumerate(t *testing.T) {
	cls := rangeClass()
	ctx := &fakeCtx{}
	r := object.NewRange(0, 4, 2, true)
	v, err := method(cls, "enumerate")(ctx, []value.Value{value.Object(r), value.Int(1)})
	if err != nil {
		t.Fatalf("enumerate error: %v", err)
	}
	if v.AsInt() != 2 {
		t.Fatalf("enumerate(1) = %v, want 2", v)
	}
}

func TestArrayDimensions(t *testing.T) {
	cls := arrayClass()
	ctx := &fakeCtx{}
	a := object.NewArray([]int{2, 3})
	v, err := method(cls, "dimensions")(ctx, []value.Value{value.Object(a)})
	if err != nil {
		t.Fatalf("dimensions error: %v", err)
	}
	dims := v.AsObject().(*object.ListObject)
	if dims.Elements.Len() != 2 {
		t.Fatalf("dimensions returned %d entries, want 2", dims.Elements.Len())
	}
}
