package interp

import (
	"morpho/internal/object"
	"morpho/internal/value"
)

// Frame is one call's activation record. The register window it owns is
// vm.Stack[Base:Base+Function.NumRegisters]; Base is an absolute index so
// CALL/RETURN never need to know about any enclosing frame's size.
type Frame struct {
	Function *object.FunctionObject
	Closure  *object.ClosureObject // nil when called through a bare function value
	Base     int
	ReturnPC int // instruction index to resume in the caller
}

const maxFrameDepth = 1024

// pushFrame reserves fn's register window above the stack's current top
// and records the call frame, raising StckOvflw at the configured depth
// limit.
func (vm *VM) pushFrame(fn *object.FunctionObject, closure *object.ClosureObject, base, returnPC int) error {
	if len(vm.Frames) >= maxFrameDepth {
		return vm.Raise(ErrStckOvflw, "call stack exceeded depth %d", maxFrameDepth)
	}
	vm.ensureStack(base + fn.NumRegisters)
	vm.Frames = append(vm.Frames, Frame{
		Function: fn,
		Closure:  closure,
		Base:     base,
		ReturnPC: returnPC,
	})
	return nil
}

func (vm *VM) popFrame() Frame {
	n := len(vm.Frames) - 1
	f := vm.Frames[n]
	vm.Frames = vm.Frames[:n]
	return f
}

func (vm *VM) currentFrame() *Frame { return &vm.Frames[len(vm.Frames)-1] }

// adaptArgs builds a fresh register window for a call to fn, binding
// positional arguments, name/value optional-argument pairs, and a
// trailing variadic list. Optional arguments are recognized scanning
// backward from the end of the argument list as (symbol, value) pairs;
// whatever remains is positional.
func adaptArgs(vm *VM, fn *object.FunctionObject, recv value.Value, args []value.Value) ([]value.Value, error) {
	nopt := len(fn.Optionals)
	nfixed := fn.NumParams - nopt
	hasVariadic := fn.VariadicSlot >= 0

	out := make([]value.Value, fn.NumRegisters)
	out[0] = recv

	nargs := len(args)
	provided := make([]bool, nopt)
	pairs := 0
	for 2*pairs < nargs {
		nameIdx := nargs - 2 - 2*pairs
		valueIdx := nargs - 1 - 2*pairs
		if nameIdx < 0 {
			break
		}
		name := args[nameIdx]
		k := -1
		for idx, opt := range fn.Optionals {
			if value.Equal(opt.Symbol, name) {
				k = idx
				break
			}
		}
		if k < 0 {
			break
		}
		out[nfixed+1+k] = args[valueIdx]
		provided[k] = true
		pairs++
	}
	positional := nargs - 2*pairs

	if hasVariadic {
		if positional < nfixed-1 {
			return nil, vm.Raise(ErrInvldArgs, "expected at least %d arguments, got %d", nfixed-1, positional)
		}
		for i := 0; i < nfixed-1; i++ {
			out[1+i] = args[i]
		}
		extra := append([]value.Value(nil), args[nfixed-1:positional]...)
		lst := object.NewListFrom(extra)
		vm.Bind(lst)
		out[fn.VariadicSlot] = value.Object(lst)
	} else {
		if positional != nfixed {
			return nil, vm.Raise(ErrInvldArgs, "expected %d arguments, got %d", nfixed, positional)
		}
		for i := 0; i < positional; i++ {
			out[1+i] = args[i]
		}
	}

	for k, opt := range fn.Optionals {
		if !provided[k] {
			out[nfixed+1+k] = fn.Constants[opt.DefaultConst]
		}
	}

	for r := fn.NumParams + 1; r < fn.NumRegisters; r++ {
		out[r] = value.Nil
	}

	return out, nil
}
