package interp

import "morpho/internal/object"

// captureUpvalue returns the open upvalue for the given absolute stack
// index, creating one if none is open there yet. Open upvalues are kept
// in ascending StackIndex order; closeUpvalues still walks the whole list.
func (vm *VM) captureUpvalue(index int) *object.UpvalueObject {
	for _, u := range vm.openUpvalues {
		if u.StackIndex == index {
			return u
		}
	}
	u := object.NewOpenUpvalue(&vm.Stack, index)
	vm.Bind(u)

	insertAt := len(vm.openUpvalues)
	for i, o := range vm.openUpvalues {
		if o.StackIndex > index {
			insertAt = i
			break
		}
	}
	vm.openUpvalues = append(vm.openUpvalues, nil)
	copy(vm.openUpvalues[insertAt+1:], vm.openUpvalues[insertAt:])
	vm.openUpvalues[insertAt] = u
	return u
}

// closeUpvalues closes every open upvalue at or above the given absolute
// stack index, copying its value into its own cell so it survives the
// frame that owned that register returning.
func (vm *VM) closeUpvalues(from int) {
	i := 0
	for i < len(vm.openUpvalues) {
		u := vm.openUpvalues[i]
		if u.StackIndex >= from {
			u.Close()
			vm.openUpvalues = append(vm.openUpvalues[:i], vm.openUpvalues[i+1:]...)
			continue
		}
		i++
	}
}
