package interp

import "morpho/internal/value"

// This file is the host embedding surface: create/bind a program, run
// it, retrieve errors, call back into scripted values, and keep
// host-held objects alive across calls. Program and VM lifetimes are
// ordinary Go values; there is no explicit destroy step beyond dropping
// the last reference; a subkernel likewise goes away once any goroutine
// using it (via internal/subkernel) has finished with it.

// Retain pins o against collection until Release is called, for host
// code that holds a reference a script can no longer see. It returns a
// handle stable across collections.
func (vm *VM) Retain(o value.Obj) int {
	for i, v := range vm.retained {
		if v == nil {
			vm.retained[i] = o
			return i
		}
	}
	vm.retained = append(vm.retained, o)
	return len(vm.retained) - 1
}

// Release drops a handle obtained from Retain.
func (vm *VM) Release(handle int) {
	if handle >= 0 && handle < len(vm.retained) {
		vm.retained[handle] = nil
	}
}

// Match reports whether the VM's pending error (if any) carries the
// given error id.
func (vm *VM) Match(id string) bool {
	return vm.lastErr != nil && vm.lastErr.ID == id
}
