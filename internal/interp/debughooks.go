package interp

// BreakpointSet is a lightweight Hook for host code that wants breakpoint
// notifications without the interactive debugger's command loop: it
// calls onPause whenever the current instruction index is a registered
// breakpoint, or on the next instruction after StepOnce, then lets
// the dispatch loop continue immediately. debugger.Debugger is the
// heavier, blocking alternative for an interactive session.
type BreakpointSet struct {
	breakpoints map[int]bool
	stepping    bool
	onPause     func(vm *VM, pc int)
}

// NewBreakpointSet returns an empty breakpoint set reporting pauses to
// onPause.
func NewBreakpointSet(onPause func(vm *VM, pc int)) *BreakpointSet {
	return &BreakpointSet{breakpoints: make(map[int]bool), onPause: onPause}
}

func (b *BreakpointSet) Set(pc int) { b.breakpoints[pc] = true }
func (b *BreakpointSet) Clear(pc int) { delete(b.breakpoints, pc) }
func (b *BreakpointSet) StepOnce() { b.stepping = true }

// BeforeInstruction satisfies Hook. It always lets execution continue (true): pausing for
// interactive input is the debugger's job, driven from onPause, not the
// dispatch loop's.
func (b *BreakpointSet) BeforeInstruction(vm *VM, pc int) bool {
	if b.stepping || b.breakpoints[pc] {
		b.stepping = false
		if b.onPause != nil {
			b.onPause(vm, pc)
		}
	}
	return true
}
