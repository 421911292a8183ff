package debugger

import (
	"bytes"
	"strings"
	"testing"

	"morpho/internal/asm"
	"morpho/internal/bytecode"
	"morpho/internal/interp"
	"morpho/internal/value"
)

// buildCounter assembles a tiny function that loads a constant into a
// register and adds it to itself, annotated with one source line per instruction and a
// register symbol on the result, so breakpoint/print/set/info commands
// have something concrete to exercise.
func buildCounter(t *testing.T) *asm.Builder {
	t.Helper()
	b := asm.New()
	fb := b.Func("main", 0, 1)
	fb.SetEntry()
	b.Program().Debug.AddFunction(fb.Function())
	b.Program().Debug.AddRegisterSymbol(0, "total")
	c1 := fb.Const(value.Int(1))
	c2 := fb.Const(value.Int(2))
	fb.ABx(bytecode.LCT, 0, c1)
	b.Program().Debug.AddElement(1, 0)
	fb.ABC(bytecode.ADD, 0, 0, 0)
	_ = c2
	b.Program().Debug.AddElement(2, 0)
	fb.ABC(bytecode.RETURN, 1, 0, 0)
	b.Program().Debug.AddElement(3, 0)
	return b
}

func newDebugger(t *testing.T, script string) (*Debugger, *interp.VM, *bytes.Buffer) {
	t.Helper()
	b := buildCounter(t)
	vm := interp.New(b.Program())
	out := &bytes.Buffer{}
	d := New(vm, b.Program(), strings.NewReader(script), out)
	return d, vm, out
}

func TestBreakAtLineAndHitCount(t *testing.T) {
	d, vm, out := newDebugger(t, "continue\n")
	id, ok := d.BreakAtLine(1)
	if !ok {
		t.Fatal("BreakAtLine(1) did not find a mapped instruction")
	}
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	bp := d.breakpoints[id]
	if bp.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", bp.HitCount)
	}
	if !strings.Contains(out.String(), "breakpoint 1 hit") {
		t.Errorf("output %q missing breakpoint hit message", out.String())
	}
}

func TestBreakAtFunctionEntry(t *testing.T) {
	d, _, _ := newDebugger(t, "")
	id, ok := d.BreakAtFunction("", "main")
	if !ok {
		t.Fatal("BreakAtFunction did not find main")
	}
	if d.breakpoints[id].PC != 0 {
		t.Errorf("breakpoint PC = %d, want 0", d.breakpoints[id].PC)
	}
}

func TestDeleteBreakpoint(t *testing.T) {
	d, _, _ := newDebugger(t, "")
	id, _ := d.BreakAtLine(1)
	if !d.deleteBreakpoint(id) {
		t.Fatal("deleteBreakpoint failed on an existing id")
	}
	if d.deleteBreakpoint(id) {
		t.Fatal("deleteBreakpoint succeeded twice on the same id")
	}
	if d.breakpointAt(0) != nil {
		t.Fatal("breakpointAt found a deleted breakpoint")
	}
}

func TestPrintAndSetKnownSymbol(t *testing.T) {
	d, vm, out := newDebugger(t, "")
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	vm.Frames = append(vm.Frames, interp.Frame{Function: vm.Program.Entry, Base: 0})

	d.print("total")
	if !strings.Contains(out.String(), "total = ") {
		t.Errorf("print(total) produced %q, want a value line", out.String())
	}

	d.set("total", "9")
	if got := vm.Stack[0].AsInt(); got != 9 {
		t.Errorf("set(total, 9) left register 0 = %d, want 9", got)
	}
}

func TestPrintUnknownSymbol(t *testing.T) {
	d, vm, out := newDebugger(t, "")
	_, err := vm.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	d.print("nope")
	if !strings.Contains(out.String(), "no symbol") {
		t.Errorf("print of an unknown symbol produced %q", out.String())
	}
}

func TestInfoGlobalsAndGC(t *testing.T) {
	d, vm, out := newDebugger(t, "")
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	d.info([]string{"globals"})
	d.info([]string{"gc"})
	if !strings.Contains(out.String(), "heap bytes in use") {
		t.Errorf("info gc output %q missing heap summary", out.String())
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _, out := newDebugger(t, "")
	resumed := d.dispatch("bogus", 0)
	if resumed {
		t.Fatal("dispatch of an unknown command reported resume")
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("output %q missing unknown-command message", out.String())
	}
}

func TestDispatchContinueStepNextFinishResume(t *testing.T) {
	d, _, _ := newDebugger(t, "")
	for _, cmd := range []string{"continue", "step", "next", "finish", "quit"} {
		if !d.dispatch(cmd, 1) {
			t.Errorf("dispatch(%q) did not resume", cmd)
		}
	}
}

func TestDispatchListAndDeleteUsage(t *testing.T) {
	d, _, out := newDebugger(t, "")
	d.dispatch("list", 0)
	if !strings.Contains(out.String(), "no breakpoints") {
		t.Errorf("list with no breakpoints produced %q", out.String())
	}
	d.dispatch("delete", 0)
	if !strings.Contains(out.String(), "usage: delete") {
		t.Errorf("delete with no args produced %q", out.String())
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want value.Value
	}{
		{"nil", value.Nil},
		{"true", value.True},
		{"false", value.False},
		{"42", value.Int(42)},
		{"3.5", value.Float(3.5)},
	}
	for _, tc := range tests {
		if got := parseLiteral(tc.in); got != tc.want {
			t.Errorf("parseLiteral(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSortedRegistersIsDeterministic(t *testing.T) {
	syms := map[int]string{3: "c", 1: "a", 2: "b"}
	got := sortedRegisters(syms)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("sortedRegisters returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedRegisters returned %v, want %v", got, want)
		}
	}
}
