// Package debugger implements an interactive command-line debugger:
// breakpoints, single-step, register/global inspection, and a
// disassembler over the program's instruction stream and debug
// annotations. It attaches to a VM as an interp.Hook, pausing the
// dispatch loop in the same goroutine rather than signaling a separate
// one, so a breakpoint hit can read live VM state without synchronization.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"morpho/internal/bytecode"
	"morpho/internal/interp"
	"morpho/internal/program"
	"morpho/internal/value"
)

// stepMode tracks what kind of single-step, if any, is in progress.
type stepMode int

const (
	stepNone stepMode = iota
	stepInto
	stepOver
	stepOut
)

// Breakpoint is a paused-execution trigger at a fixed instruction index.
type Breakpoint struct {
	ID       int
	PC       int
	Line     int
	Function string
	Enabled  bool
	HitCount int
}

// Debugger drives one VM interactively. It implements interp.Hook
// directly: BeforeInstruction is where breakpoints and step targets are
// checked and where the command loop blocks when paused.
type Debugger struct {
	VM   *interp.VM
	Prog *program.Program

	in  *bufio.Reader
	out io.Writer

	breakpoints map[int]*Breakpoint
	nextID      int

	step      stepMode
	stepDepth int // frame depth step-over/step-out compares against

	quit bool
}

// New attaches a debugger to vm, reading commands from in and writing
// output to out. New sets vm.Debug to the returned debugger.
func New(vm *interp.VM, prog *program.Program, in io.Reader, out io.Writer) *Debugger {
	d := &Debugger{
		VM:          vm,
		Prog:        prog,
		in:          bufio.NewReader(in),
		out:         out,
		breakpoints: make(map[int]*Breakpoint),
		nextID:      1,
	}
	vm.Debug = d
	return d
}

func (d *Debugger) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

// BreakAtLine sets a breakpoint at the first instruction mapped to the
// given source line.
func (d *Debugger) BreakAtLine(line int) (int, bool) {
	pc, ok := d.Prog.Debug.IndexFromLine(line)
	if !ok {
		return 0, false
	}
	return d.addBreakpoint(pc, line, ""), true
}

// BreakAtFunction sets a breakpoint at a named function's entry.
func (d *Debugger) BreakAtFunction(class, name string) (int, bool) {
	pc, ok := d.Prog.Debug.IndexFromFunction(class, name)
	if !ok {
		return 0, false
	}
	return d.addBreakpoint(pc, 0, name), true
}

func (d *Debugger) addBreakpoint(pc, line int, fn string) int {
	id := d.nextID
	d.nextID++
	d.breakpoints[id] = &Breakpoint{ID: id, PC: pc, Line: line, Function: fn, Enabled: true}
	return id
}

func (d *Debugger) deleteBreakpoint(id int) bool {
	if _, ok := d.breakpoints[id]; !ok {
		return false
	}
	delete(d.breakpoints, id)
	return true
}

func (d *Debugger) breakpointAt(pc int) *Breakpoint {
	for _, bp := range d.breakpoints {
		if bp.Enabled && bp.PC == pc {
			return bp
		}
	}
	return nil
}

// BeforeInstruction satisfies interp.Hook. It decides whether to pause at
// pc and, if so, blocks reading commands until the user resumes.
func (d *Debugger) BeforeInstruction(vm *interp.VM, pc int) bool {
	if d.quit {
		return true
	}
	depth := len(vm.Frames)
	pause := false
	if bp := d.breakpointAt(pc); bp != nil {
		bp.HitCount++
		d.printf("breakpoint %d hit (count %d)\n", bp.ID, bp.HitCount)
		pause = true
	}
	switch d.step {
	case stepInto:
		pause = true
	case stepOver:
		pause = pause || depth <= d.stepDepth
	case stepOut:
		pause = pause || depth < d.stepDepth
	}
	if !pause {
		return true
	}
	d.step = stepNone
	d.showLocation(pc)
	d.commandLoop(depth)
	return true
}

func (d *Debugger) showLocation(pc int) {
	info := d.Prog.Debug.InfoFromIndex(pc)
	name := "<entry>"
	if info.Func != nil {
		name = info.Func.Name
	}
	d.printf("at %s (%s:%d) pc=%d\n", name, info.Module, info.Line, pc)
}

// commandLoop reads and executes commands until one of them resumes
// execution (continue/step/next/finish).
func (d *Debugger) commandLoop(depth int) {
	for {
		d.printf("(morpho-debug) ")
		line, err := d.in.ReadString('\n')
		if err != nil {
			d.quit = true
			return
		}
		if d.dispatch(strings.TrimSpace(line), depth) {
			return
		}
	}
}

// dispatch executes one command line, returning true when it should
// resume the dispatch loop.
func (d *Debugger) dispatch(line string, depth int) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		d.help()

	case "break", "b":
		if len(args) < 1 {
			d.printf("usage: break <line> | break <function>\n")
			return false
		}
		if n, err := strconv.Atoi(args[0]); err == nil {
			if id, ok := d.BreakAtLine(n); ok {
				d.printf("breakpoint %d at line %d\n", id, n)
			} else {
				d.printf("no instruction maps to line %d\n", n)
			}
		} else if id, ok := d.BreakAtFunction("", args[0]); ok {
			d.printf("breakpoint %d at function %s\n", id, args[0])
		} else {
			d.printf("no function named %s\n", args[0])
		}

	case "delete":
		if len(args) < 1 {
			d.printf("usage: delete <id>\n")
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || !d.deleteBreakpoint(id) {
			d.printf("no breakpoint %s\n", args[0])
		}

	case "list", "l":
		d.listBreakpoints()

	case "disassemble", "disas":
		d.disassemble()

	case "continue", "c":
		return true

	case "step", "s":
		d.step = stepInto
		return true

	case "next", "n":
		d.step = stepOver
		d.stepDepth = depth
		return true

	case "finish", "f":
		d.step = stepOut
		d.stepDepth = depth
		return true

	case "where", "w":
		d.where()

	case "print", "p":
		if len(args) < 1 {
			d.printf("usage: print <name>\n")
			return false
		}
		d.print(args[0])

	case "info":
		d.info(args)

	case "set":
		if len(args) < 2 {
			d.printf("usage: set <name> <value>\n")
			return false
		}
		d.set(args[0], strings.Join(args[1:], " "))

	case "gc":
		before := humanize.Bytes(uint64(max0(d.VM.BytesUsed())))
		d.VM.Collect()
		after := humanize.Bytes(uint64(max0(d.VM.BytesUsed())))
		d.printf("collected: %s -> %s\n", before, after)

	case "trace", "t":
		d.printf("pc=%d frames=%d\n", d.VM.PC(), depth)

	case "quit", "q":
		d.quit = true
		d.VM.Debug = nil
		return true

	default:
		d.printf("unknown command %q (type 'help')\n", cmd)
	}
	return false
}

func max0(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func (d *Debugger) help() {
	d.printf(`commands:
 break (b) <line>|<function> set a breakpoint
 delete <id> remove a breakpoint
 list (l) list breakpoints
 disassemble (disas) disassemble the current function
 continue (c) resume execution
 step (s) step one instruction
 next (n) step over calls in the current frame
 finish (f) run until the current frame returns
 where (w) show the call stack
 print (p) <name> print a register's current value
 info [registers|globals|gc] show interpreter state
 set <name> <value> set a register to a literal value
 gc force a collection
 trace (t) show the current pc and frame depth
 quit (q) detach the debugger
`)
}

func (d *Debugger) listBreakpoints() {
	if len(d.breakpoints) == 0 {
		d.printf("no breakpoints\n")
		return
	}
	for _, bp := range d.breakpoints {
		state := "enabled"
		if !bp.Enabled {
			state = "disabled"
		}
		d.printf(" %d: pc=%d line=%d fn=%s (%s) hits=%d\n", bp.ID, bp.PC, bp.Line, bp.Function, state, bp.HitCount)
	}
}

func (d *Debugger) disassemble() {
	pc := d.VM.PC()
	info := d.Prog.Debug.InfoFromIndex(pc)
	var fn string
	if info.Func != nil {
		fn = info.Func.Name
	}
	start := 0
	if info.Func != nil {
		start = info.Func.Entry
	}
	instrs := d.Prog.Instructions
	end := len(instrs)
	for i := start; i < end && i < start+64; i++ {
		marker := " "
		if i == pc {
			marker = "-> "
		}
		d.printf("%s%4d %s a=%d b=%d c=%d\n", marker, i, instrs[i].Op(), instrs[i].A(), instrs[i].B(), instrs[i].C())
		if instrs[i].Op() == bytecode.RETURN {
			break
		}
	}
	_ = fn
}

func (d *Debugger) where() {
	for i := len(d.VM.Frames) - 1; i >= 0; i-- {
		f := d.VM.Frames[i]
		d.printf(" #%d %s (base=%d)\n", i, f.Function.Name, f.Base)
	}
}

// sortedRegisters returns syms' register slots in ascending order, so
// commands that walk a frame's symbol table report them consistently
// across runs instead of in map iteration order.
func sortedRegisters(syms map[int]string) []int {
	regs := maps.Keys(syms)
	slices.Sort(regs)
	return regs
}

func (d *Debugger) print(name string) {
	if len(d.VM.Frames) == 0 {
		d.printf("no active frame\n")
		return
	}
	f := d.VM.Frames[len(d.VM.Frames)-1]
	syms := d.Prog.Debug.SymbolsForFunction(f.Function, d.VM.PC())
	for _, reg := range sortedRegisters(syms) {
		if syms[reg] == name {
			d.printf("%s = %s\n", name, d.VM.Stack[f.Base+reg].String())
			return
		}
	}
	d.printf("no symbol %q in the current frame\n", name)
}

func (d *Debugger) info(args []string) {
	what := "registers"
	if len(args) > 0 {
		what = args[0]
	}
	switch what {
	case "registers":
		if len(d.VM.Frames) == 0 {
			d.printf("no active frame\n")
			return
		}
		f := d.VM.Frames[len(d.VM.Frames)-1]
		for i := 0; i < f.Function.NumRegisters; i++ {
			d.printf(" r%d = %s\n", i, d.VM.Stack[f.Base+i].String())
		}
	case "globals":
		for i, name := range d.Prog.GlobalNames {
			d.printf(" %s = %s\n", name, d.VM.Globals[i].String())
		}
	case "gc":
		d.printf(" heap bytes in use: %s\n", humanize.Bytes(uint64(max0(d.VM.BytesUsed()))))
	default:
		d.printf("usage: info [registers|globals|gc]\n")
	}
}

func (d *Debugger) set(name, literal string) {
	if len(d.VM.Frames) == 0 {
		d.printf("no active frame\n")
		return
	}
	f := d.VM.Frames[len(d.VM.Frames)-1]
	syms := d.Prog.Debug.SymbolsForFunction(f.Function, d.VM.PC())
	for _, reg := range sortedRegisters(syms) {
		if syms[reg] == name {
			d.VM.Stack[f.Base+reg] = parseLiteral(literal)
			return
		}
	}
	d.printf("no symbol %q in the current frame\n", name)
}

func parseLiteral(s string) value.Value {
	if s == "nil" {
		return value.Nil
	}
	if s == "true" {
		return value.True
	}
	if s == "false" {
		return value.False
	}
	if n, err := strconv.Atoi(s); err == nil {
		return value.Int(int32(n))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f)
	}
	return value.Nil
}
