package object

import (
	"testing"

	"morpho/internal/value"
)

func TestNewFunctionDefaults(t *testing.T) {
	fn := NewFunction("greet", 4)
	if fn.VariadicSlot != -1 {
		t.Errorf("VariadicSlot = %d, want -1", fn.VariadicSlot)
	}
	if fn.Entry != 4 {
		t.Errorf("Entry = %d, want 4", fn.Entry)
	}
	if fn.ObjString() != "<fn greet>" {
		t.Errorf("ObjString() = %q, want <fn greet>", fn.ObjString())
	}
}

func TestAnonymousFunctionObjString(t *testing.T) {
	fn := NewFunction("", 0)
	if fn.ObjString() != "<fn>" {
		t.Errorf("ObjString() = %q, want <fn>", fn.ObjString())
	}
}

func TestClosureUpvalueSlotsSizedToPrototype(t *testing.T) {
	fn := NewFunction("f", 0)
	fn.Upvalues = []UpvalueProto{{IsLocal: true, Slot: 0}, {IsLocal: false, Slot: 1}}
	c := NewClosure(fn)
	if len(c.Upvalues) != 2 {
		t.Fatalf("len(Upvalues) = %d, want 2", len(c.Upvalues))
	}
	if c.ObjString() != "<fn f>" {
		t.Errorf("ObjString() = %q, want <fn f>", c.ObjString())
	}
}

func TestClosureMarkVisitsFunctionAndUpvalues(t *testing.T) {
	fn := NewFunction("f", 0)
	fn.Upvalues = []UpvalueProto{{IsLocal: true, Slot: 0}}
	c := NewClosure(fn)
	stack := []value.Value{value.Int(1)}
	c.Upvalues[0] = NewOpenUpvalue(&stack, 0)

	var m recordingMarker
	c.Mark(&m)
	if len(m.objects) != 2 {
		t.Fatalf("Mark recorded %d objects, want 2 (function + upvalue)", len(m.objects))
	}
}
