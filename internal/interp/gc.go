package interp

import (
	"morpho/internal/object"
	"morpho/internal/value"
)

type headerer interface {
	Header() *object.Object
}

// Bind links a freshly allocated object into this VM's managed heap list
// and may trigger a collection once the accounted byte total crosses the
// current threshold. Built-in functions and other deliberately unmanaged
// objects (Status set to Unmanaged after construction, overriding
// NewHeader's Unmarked default) are never linked in at all: they are
// never marked and never swept.
func (vm *VM) Bind(o value.Obj) {
	h, ok := o.(headerer)
	if !ok {
		return
	}
	header := h.Header()
	if header.Status == object.Unmanaged {
		return
	}
	header.Status = object.Unmarked
	header.Next = vm.heap
	vm.heap = o
	vm.bytesUsed += sizeOf(o)
	if vm.bytesUsed >= vm.gcThreshold {
		vm.Collect()
	}
}

func sizeOf(o value.Obj) int64 {
	if s, ok := o.(object.Sizer); ok {
		return s.Size()
	}
	return object.DefaultObjectSize
}

// MarkValue satisfies object.Marker: it marks v's referenced object, if
// any.
func (vm *VM) MarkValue(v value.Value) {
	if v.IsObject() {
		vm.MarkObject(v.AsObject())
	}
}

// MarkObject satisfies object.Marker: it greys o if it is white
// (Unmarked), adding it to the worklist the mark phase drains. Unmanaged
// objects (program constants, interned symbols, built-in functions) are
// never greyed; they are permanent and never swept.
func (vm *VM) MarkObject(o value.Obj) {
	if o == nil {
		return
	}
	h, ok := o.(headerer)
	if !ok {
		return
	}
	header := h.Header()
	if header.Status != object.Unmarked {
		return
	}
	header.Status = object.Marked
	vm.gray = append(vm.gray, o)
}

// Collect runs one non-incremental tri-colour mark-sweep cycle. A
// subkernel defers to its parent: collecting a child's small heap without
// considering values the parent's stack still holds would be unsound if
// the two ever reference shared program-bound constants through mutable
// state, so subkernels simply ask the parent to run its own cycle
// instead of collecting independently.
func (vm *VM) Collect() {
	if vm.Parent != nil {
		vm.Parent.Collect()
		return
	}
	vm.markRoots()
	for len(vm.gray) > 0 {
		o := vm.gray[len(vm.gray)-1]
		vm.gray = vm.gray[:len(vm.gray)-1]
		if m, ok := o.(object.Markable); ok {
			m.Mark(vm)
		}
	}
	vm.sweep()
	if vm.bytesUsed*2 > vm.gcThreshold {
		vm.gcThreshold = vm.bytesUsed * 2
	}
}

// markRoots marks every value reachable directly from VM state: globals,
// live register windows, open upvalues, and the dictionaries pinned by
// active error handlers.
func (vm *VM) markRoots() {
	for _, g := range vm.Globals {
		vm.MarkValue(g)
	}
	for _, f := range vm.Frames {
		window := vm.Stack[f.Base : f.Base+f.Function.NumRegisters]
		for _, r := range window {
			vm.MarkValue(r)
		}
		if f.Closure != nil {
			vm.MarkObject(f.Closure)
		}
	}
	for _, u := range vm.openUpvalues {
		vm.MarkObject(u)
	}
	for _, h := range vm.handlers.handlers {
		if h.dict != nil {
			h.dict.Each(func(k, v value.Value) {
				vm.MarkValue(k)
				vm.MarkValue(v)
			})
		}
	}
	for _, o := range vm.retained {
		if o != nil {
			vm.MarkObject(o)
		}
	}
}

// sweep reclaims every still-white object on the heap list and relinks
// the survivors, then flips every survivor back to white for the next
// cycle.
func (vm *VM) sweep() {
	var kept value.Obj
	var tail headerer
	freed := int64(0)
	for cur := vm.heap; cur != nil; {
		h, ok := cur.(headerer)
		if !ok {
			break
		}
		header := h.Header()
		next := header.Next
		if header.Status == object.Marked {
			header.Status = object.Unmarked
			header.Next = nil
			if kept == nil {
				kept = cur
			} else {
				tail.Header().Next = cur
			}
			tail = h
		} else {
			freed += sizeOf(cur)
		}
		cur = next
	}
	vm.heap = kept
	vm.bytesUsed -= freed
	if vm.bytesUsed < 0 {
		vm.bytesUsed = 0
	}
}
