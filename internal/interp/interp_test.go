package interp

import (
	"testing"

	"morpho/internal/asm"
	"morpho/internal/bytecode"
	"morpho/internal/object"
	"morpho/internal/value"
)

// buildAdd assembles: fn main() { r0 = 20 + 22; return r0 }
func buildAdd(t *testing.T) *asm.Builder {
	t.Helper()
	b := asm.New()
	fb := b.Func("main", 0, 3)
	fb.SetEntry()
	fb.ABx(bytecode.LCT, 0, fb.Const(value.Int(20)))
	fb.ABx(bytecode.LCT, 1, fb.Const(value.Int(22)))
	fb.ABC(bytecode.ADD, 2, 0, 1)
	fb.ABC(bytecode.RETURN, 1, 2, 0)
	return b
}

func TestRunExecutesAddition(t *testing.T) {
	b := buildAdd(t)
	vm := New(b.Program())
	result, err := vm.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.AsInt() != 42 {
		t.Fatalf("Run() = %v, want 42", result)
	}
}

func TestRunDivisionByZeroRaises(t *testing.T) {
	b := asm.New()
	fb := b.Func("main", 0, 3)
	fb.SetEntry()
	fb.ABx(bytecode.LCT, 0, fb.Const(value.Int(1)))
	fb.ABx(bytecode.LCT, 1, fb.Const(value.Int(0)))
	fb.ABC(bytecode.DIV, 2, 0, 1)
	fb.ABC(bytecode.RETURN, 1, 2, 0)

	vm := New(b.Program())
	_, err := vm.Run()
	if err == nil {
		t.Fatal("Run() with a division by zero returned nil error")
	}
	se, ok := err.(*ScriptError)
	if !ok || se.ID != ErrDvZr {
		t.Fatalf("error = %v, want a ScriptError with id %s", err, ErrDvZr)
	}
}

func TestRunBranchSkipsWhenConditionFalse(t *testing.T) {
	b := asm.New()
	fb := b.Func("main", 0, 2)
	fb.SetEntry()
	fb.ABC(bytecode.LOADBOOL, 0, 0, 0) // r0 = false
	skip := fb.AsBx(bytecode.BIF, 0, 0)
	fb.ABx(bytecode.LCT, 1, fb.Const(value.Int(1))) // should run, since the branch is not taken
	fb.ABC(bytecode.RETURN, 1, 1, 0)
	fb.PatchSBx(skip, fb.Label()) // target is past the RETURN, never reached here

	vm := New(b.Program())
	result, err := vm.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.AsInt() != 1 {
		t.Fatalf("Run() = %v, want 1 (branch not taken)", result)
	}
}

// TestRunPushErrCatchesRaisedID builds: push a handler mapping DvZr to a
// recovery branch, trigger a division by zero, and confirm execution
// resumes at the handler's target instead of propagating the error.
func TestRunPushErrCatchesRaisedID(t *testing.T) {
	b := asm.New()
	fb := b.Func("main", 0, 3)
	fb.SetEntry()

	dictObj := object.NewDictionary()
	dictConst := fb.Const(value.Object(dictObj))

	fb.ABx(bytecode.PUSHERR, 0, dictConst)
	fb.ABx(bytecode.LCT, 0, fb.Const(value.Int(1)))
	fb.ABx(bytecode.LCT, 1, fb.Const(value.Int(0)))
	fb.ABC(bytecode.DIV, 2, 0, 1) // raises DvZr
	fb.ABC(bytecode.RETURN, 1, 2, 0)
	recoverIdx := fb.Label()
	fb.ABx(bytecode.LCT, 0, fb.Const(value.Int(-1)))
	fb.ABC(bytecode.RETURN, 1, 0, 0)

	dictObj.Table.Set(value.Object(object.NewString(ErrDvZr)), value.Int(int32(recoverIdx)))

	vm := New(b.Program())
	result, err := vm.Run()
	if err != nil {
		t.Fatalf("Run() error = %v, want the handler to catch DvZr", err)
	}
	if result.AsInt() != -1 {
		t.Fatalf("Run() = %v, want -1 (the handler's recovery value)", result)
	}
}

func TestBindTriggersCollectionPastThreshold(t *testing.T) {
	b := asm.New()
	fb := b.Func("main", 0, 1)
	fb.SetEntry()
	fb.ABC(bytecode.RETURN, 0, 0, 0)

	vm := New(b.Program())
	vm.gcThreshold = 64 // force a collection on the first few binds

	for i := 0; i < 10; i++ {
		vm.Bind(object.NewString("x"))
	}
	// Nothing roots these strings, so collections along the way should
	// reclaim them; BytesUsed should not grow unboundedly across repeated
	// binds with no live references.
	if vm.BytesUsed() > 10*64 {
		t.Errorf("BytesUsed() = %d, collector does not appear to have run", vm.BytesUsed())
	}
}
