package interp

import (
	"morpho/internal/bytecode"
	"morpho/internal/dict"
	"morpho/internal/object"
	"morpho/internal/value"
)

// Run executes the program from its entry point to completion. It is the normal top-level entry; host code that
// needs to call back into a particular function after Run returns should
// use Call instead.
func (vm *VM) Run() (value.Value, error) {
	entry := vm.Program.Entry
	if entry == nil {
		return value.Nil, vm.Raise(ErrIntrnl, "program has no entry function")
	}
	return vm.callScripted(entry, nil, value.Nil, nil)
}

// run drives the fetch/decode/dispatch loop until the frame stack
// shrinks back to stopDepth, i.e. until the frame callScripted (or Run)
// pushed has returned. A raised error first searches the active handler
// stack; only an error that finds no handler
// within this span propagates to the Go caller.
func (vm *VM) run(stopDepth int) (value.Value, error) {
	var lastReturn value.Value
	for len(vm.Frames) > stopDepth {
		if vm.Debug != nil {
			vm.Debug.BeforeInstruction(vm, vm.pc)
		}
		ret, done, err := vm.step()
		if err != nil {
			if ok := vm.handleError(err, stopDepth); !ok {
				return value.Nil, err
			}
			continue
		}
		if done {
			lastReturn = ret
		}
	}
	return lastReturn, nil
}

// handleError searches the error-handler stack for a handler registered
// at or above stopDepth that recognizes err's id, unwinding the frame
// stack to the handler's depth and branching to its recovery offset if
// found. It returns false when no such handler exists, meaning
// the caller should propagate err.
func (vm *VM) handleError(err error, stopDepth int) bool {
	se, ok := err.(*ScriptError)
	if !ok {
		return false
	}
	for {
		h, ok := vm.handlers.top()
		if !ok || h.framePointer < stopDepth {
			return false
		}
		vm.handlers.pop()
		branch, matched := handlerBranch(h.dict, se.ID)
		for len(vm.Frames) > h.framePointer {
			f := vm.popFrame()
			vm.closeUpvalues(f.Base)
		}
		if matched {
			vm.pc = branch
			return true
		}
		// This handler doesn't recognize the id: keep unwinding to the
		// next enclosing handler.
	}
}

func handlerBranch(d *dict.Table, id string) (int, bool) {
	if d == nil {
		return 0, false
	}
	v, ok := d.Get(value.Object(object.NewString(id)))
	if !ok || !v.IsInt() {
		return 0, false
	}
	return int(v.AsInt()), true
}

// step executes exactly one instruction. done reports whether it was a
// RETURN that unwound the innermost frame; ret is that frame's result,
// meaningful only when done is true.
func (vm *VM) step() (ret value.Value, done bool, err error) {
	frame := vm.currentFrame()
	code := vm.code()
	instr := code[vm.pc]
	base := frame.Base
	consts := frame.Function.Constants
	reg := func(i uint8) value.Value { return vm.Stack[base+int(i)] }
	setReg := func(i uint8, v value.Value) { vm.Stack[base+int(i)] = v }

	nextPC := vm.pc + 1

	switch instr.Op() {
	case bytecode.NOP:

	case bytecode.MOV:
		setReg(instr.A(), reg(instr.B()))

	case bytecode.LCT:
		setReg(instr.A(), consts[instr.Bx()])

	case bytecode.LGL:
		setReg(instr.A(), vm.Globals[instr.Bx()])

	case bytecode.SGL:
		vm.Globals[instr.Bx()] = reg(instr.A())

	case bytecode.LUP:
		setReg(instr.A(), frame.Closure.Upvalues[instr.B()].Get())

	case bytecode.SUP:
		frame.Closure.Upvalues[instr.A()].Set(reg(instr.B()))

	case bytecode.CLOSEUP:
		vm.closeUpvalues(base + int(instr.A()))

	case bytecode.LOADNIL:
		setReg(instr.A(), value.Nil)

	case bytecode.LOADBOOL:
		setReg(instr.A(), value.Bool(instr.B() != 0))

	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.POW:
		v, e := vm.binaryArith(instr.Op(), reg(instr.B()), reg(instr.C()))
		if e != nil {
			return value.Nil, false, e
		}
		setReg(instr.A(), v)

	case bytecode.NOT:
		setReg(instr.A(), value.Bool(!reg(instr.B()).Truthy()))

	case bytecode.EQ, bytecode.NEQ, bytecode.LT, bytecode.LE:
		v, e := vm.compare(instr.Op(), reg(instr.B()), reg(instr.C()))
		if e != nil {
			return value.Nil, false, e
		}
		setReg(instr.A(), v)

	case bytecode.B:
		nextPC = vm.pc + int(instr.SBx())

	case bytecode.BIF:
		if reg(instr.A()).Truthy() {
			nextPC = vm.pc + int(instr.SBx())
		}

	case bytecode.BIFF:
		if !reg(instr.A()).Truthy() {
			nextPC = vm.pc + int(instr.SBx())
		}

	case bytecode.CALL:
		a, nargs := instr.A(), int(instr.B())
		callee := reg(a)
		args := make([]value.Value, nargs)
		copy(args, vm.Stack[base+int(a)+1:base+int(a)+1+nargs])
		vm.pc = nextPC
		v, e := vm.Call(callee, value.Nil, args)
		if e != nil {
			return value.Nil, false, e
		}
		vm.Stack[base+int(a)] = v
		return value.Nil, false, nil

	case bytecode.INVOKE:
		a, methodIdx, nargs := instr.A(), instr.B(), int(instr.C())
		recv := reg(a)
		name := reg(methodIdx).String()
		args := make([]value.Value, nargs)
		copy(args, vm.Stack[base+int(a)+1:base+int(a)+1+nargs])
		vm.pc = nextPC
		v, e := vm.Invoke(recv, name, args)
		if e != nil {
			return value.Nil, false, e
		}
		vm.Stack[base+int(a)] = v
		return value.Nil, false, nil

	case bytecode.RETURN:
		var result value.Value
		if instr.A() != 0 {
			result = reg(instr.B())
		}
		f := vm.popFrame()
		vm.closeUpvalues(f.Base)
		vm.pc = f.ReturnPC
		return result, true, nil

	case bytecode.CLOSURE:
		proto, ok := consts[instr.B()].AsObject().(*object.FunctionObject)
		if !ok {
			return value.Nil, false, vm.Raise(ErrIntrnl, "CLOSURE constant is not a function prototype")
		}
		cl := object.NewClosure(proto)
		for i, up := range proto.Upvalues {
			if up.IsLocal {
				cl.Upvalues[i] = vm.captureUpvalue(base + up.Slot)
			} else {
				cl.Upvalues[i] = frame.Closure.Upvalues[up.Slot]
			}
		}
		vm.Bind(cl)
		setReg(instr.A(), value.Object(cl))

	case bytecode.CAT:
		setReg(instr.A(), vm.concat(vm.Stack[base+int(instr.B()):base+int(instr.C())+1]))

	case bytecode.PRINT:
		if vm.Stdout != nil {
			vm.Stdout.WriteString(reg(instr.A()).String() + "\n")
		}

	case bytecode.LIX:
		v, e := vm.index(reg(instr.B()), reg(instr.C()))
		if e != nil {
			return value.Nil, false, e
		}
		setReg(instr.A(), v)

	case bytecode.SIX:
		if e := vm.setIndex(reg(instr.A()), reg(instr.B()), reg(instr.C())); e != nil {
			return value.Nil, false, e
		}

	case bytecode.LPR:
		v, e := vm.getProperty(reg(instr.B()), consts[instr.C()].String())
		if e != nil {
			return value.Nil, false, e
		}
		setReg(instr.A(), v)

	case bytecode.SPR:
		if e := vm.setProperty(reg(instr.A()), consts[instr.B()].String(), reg(instr.C())); e != nil {
			return value.Nil, false, e
		}

	case bytecode.PUSHERR:
		d := dictFromValue(consts[instr.Bx()])
		if e := vm.PushHandler(d); e != nil {
			return value.Nil, false, e
		}

	case bytecode.POPERR:
		vm.PopHandler()
		nextPC = vm.pc + int(instr.SBx())

	case bytecode.BREAK:
		// BREAK performs no action of its own. A Hook sees it like any other
		// instruction and pauses there only if a breakpoint is set at its
		// index.

	case bytecode.END:
		// Terminal marker; a well-formed program never reaches it through
		// normal control flow (every path ends in RETURN).

	default:
		return value.Nil, false, vm.Raise(ErrIntrnl, "unknown opcode %s", instr.Op())
	}

	vm.pc = nextPC
	return value.Nil, false, nil
}
