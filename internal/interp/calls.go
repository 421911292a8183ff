package interp

import (
	"morpho/internal/object"
	"morpho/internal/value"
)

// Call invokes callee with the given receiver (value.Nil for a bare
// function call) and arguments, running it to completion and returning
// its result. It is the single entry point every call path funnels
// through: the CALL/INVOKE opcodes, operator-overload dispatch, veneer
// method dispatch, and the host embedding ABI.
func (vm *VM) Call(callee value.Value, recv value.Value, args []value.Value) (value.Value, error) {
	if !callee.IsObject() {
		return value.Nil, vm.Raise(ErrUncallable, "value of type %s is not callable", callee.TypeName())
	}
	switch fn := callee.AsObject().(type) {
	case *object.InvocationObject:
		return vm.Call(fn.Method, fn.Receiver, args)
	case *object.ClassObject:
		return vm.instantiate(fn, args)
	case *object.BuiltinFunctionObject:
		return vm.callBuiltin(fn, recv, args)
	case *object.ClosureObject:
		return vm.callScripted(fn.Function, fn, recv, args)
	case *object.FunctionObject:
		return vm.callScripted(fn, nil, recv, args)
	default:
		return value.Nil, vm.Raise(ErrUncallable, "value of type %s is not callable", callee.TypeName())
	}
}

// Invoke resolves methodName on recv's class and calls it.
func (vm *VM) Invoke(recv value.Value, methodName string, args []value.Value) (value.Value, error) {
	cls, ok := classOf(recv)
	if !ok {
		return value.Nil, vm.Raise(ErrNotAnObj, "%s has no methods", recv.TypeName())
	}
	m, ok := cls.Resolve(value.Object(object.NewString(methodName)))
	if !ok {
		return value.Nil, vm.Raise(ErrClssLcksMthd, "%s has no method '%s'", cls.Name, methodName)
	}
	return vm.Call(m, recv, args)
}

func (vm *VM) callBuiltin(fn *object.BuiltinFunctionObject, recv value.Value, args []value.Value) (value.Value, error) {
	n := len(args)
	if n < fn.ArityMin || (fn.ArityMax >= 0 && n > fn.ArityMax) {
		return value.Nil, vm.Raise(ErrInvldArgs, "'%s' expects between %d and %d arguments, got %d", fn.Name, fn.ArityMin, fn.ArityMax, n)
	}
	full := make([]value.Value, 0, n+1)
	full = append(full, recv)
	full = append(full, args...)
	return fn.Fn(vm, full)
}

// instantiate constructs a new instance of cls and runs its init method,
// if any.
func (vm *VM) instantiate(cls *object.ClassObject, args []value.Value) (value.Value, error) {
	inst := object.NewInstance(cls)
	vm.Bind(inst)
	initFn, hasInit := cls.Resolve(value.Object(object.NewString("init")))
	if !hasInit {
		if len(args) > 0 {
			return value.Nil, vm.Raise(ErrNoInit, "class '%s' takes no initializer arguments", cls.Name)
		}
		return value.Object(inst), nil
	}
	if _, err := vm.Call(initFn, value.Object(inst), args); err != nil {
		return value.Nil, err
	}
	return value.Object(inst), nil
}

// callScripted pushes a fresh frame for a compiled function and runs the
// dispatch loop recursively until that frame (and only that frame)
// returns. Recursion depth is bounded by maxFrameDepth.
func (vm *VM) callScripted(fn *object.FunctionObject, closure *object.ClosureObject, recv value.Value, args []value.Value) (value.Value, error) {
	regs, err := adaptArgs(vm, fn, recv, args)
	if err != nil {
		return value.Nil, err
	}
	base := 0
	if len(vm.Frames) > 0 {
		top := vm.currentFrame()
		base = top.Base + top.Function.NumRegisters
	}
	vm.ensureStack(base + fn.NumRegisters)
	copy(vm.Stack[base:base+len(regs)], regs)

	stopDepth := len(vm.Frames)
	if err := vm.pushFrame(fn, closure, base, vm.pc); err != nil {
		return value.Nil, err
	}
	vm.pc = fn.Entry
	return vm.run(stopDepth)
}
