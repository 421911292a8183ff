package main

import (
	"morpho/internal/asm"
	"morpho/internal/bytecode"
	"morpho/internal/interp"
	"morpho/internal/program"
	"morpho/internal/value"
)

// fixture pairs a small hand-assembled program with an init step that
// fills in any global slots its bytecode expects, since there is no
// lexer/parser/codegen front end in scope: cmd/morpho exercises the
// embedding ABI over programs built with the in-repo assembler instead of
// source files.
type fixture struct {
	build func() (*program.Program, func(vm *interp.VM))
}

var fixtures = map[string]fixture{
	"hello": {build: buildHello},
	"fib":   {build: buildFib},
}

func buildHello() (*program.Program, func(vm *interp.VM)) {
	b := asm.New()
	main := b.Func("main", 0, 1).SetEntry()
	b.Program().Debug.AddFunction(main.Function())
	k := main.ConstString("Hello, Morpho!")
	main.ABx(bytecode.LCT, 0, k)
	main.ABC(bytecode.PRINT, 0, 0, 0)
	main.ABC(bytecode.RETURN, 0, 0, 0)
	return b.Program(), nil
}

// buildFib assembles a recursive Fibonacci function and an entry point
// that calls fib(10) and prints the result, exercising CALL, global
// variables, arithmetic, and comparison together.
func buildFib() (*program.Program, func(vm *interp.VM)) {
	b := asm.New()
	gFib := b.DefineGlobal("fib")

	fib := b.Func("fib", 1, 8)
	k2 := fib.Const(value.Int(2))
	fib.ABx(bytecode.LCT, 2, k2)       // r2 = 2
	fib.ABC(bytecode.LT, 3, 1, 2)      // r3 = n < 2
	branch := fib.AsBx(bytecode.BIFF, 3, 0)
	fib.ABC(bytecode.RETURN, 1, 1, 0)  // return n
	elseLabel := fib.Label()
	k1 := fib.Const(value.Int(1))
	fib.ABx(bytecode.LCT, 2, k1)       // r2 = 1
	fib.ABC(bytecode.SUB, 6, 1, 2)     // r6 = n-1
	fib.ABx(bytecode.LGL, 5, gFib)     // r5 = fib
	fib.ABC(bytecode.CALL, 5, 1, 0)    // r5 = fib(n-1)
	fib.ABx(bytecode.LCT, 2, k2)       // r2 = 2
	fib.ABC(bytecode.SUB, 7, 1, 2)     // r7 = n-2
	fib.ABx(bytecode.LGL, 6, gFib)     // r6 = fib
	fib.ABC(bytecode.CALL, 6, 1, 0)    // r6 = fib(n-2)
	fib.ABC(bytecode.ADD, 4, 5, 6)     // r4 = fib(n-1)+fib(n-2)
	fib.ABC(bytecode.RETURN, 1, 4, 0)
	fib.PatchSBx(branch, elseLabel)
	fibFn := fib.Function()

	main := b.Func("main", 0, 3).SetEntry()
	kN := main.Const(value.Int(10))
	main.ABx(bytecode.LCT, 1, kN)    // r1 = 10
	main.ABx(bytecode.LGL, 0, gFib)  // r0 = fib
	main.ABC(bytecode.CALL, 0, 1, 0) // r0 = fib(10)
	main.ABC(bytecode.PRINT, 0, 0, 0)
	main.ABC(bytecode.RETURN, 0, 0, 0)

	init := func(vm *interp.VM) {
		vm.Globals[gFib] = value.Object(fibFn)
	}
	return b.Program(), init
}
