package interp

import (
	"fmt"

	"morpho/internal/dict"
	"morpho/internal/object"
	"morpho/internal/value"
)

// Category classifies a raised error.
type Category uint8

const (
	CategoryInfo Category = iota
	CategoryWarning
	CategoryHalt
	CategoryExit
	CategoryLex
	CategoryParse
	CategoryCompile
)

// Error ids. Stable strings: implementers must preserve these for
// test compatibility, and scripted catch dictionaries key on them.
const (
	ErrInvldOp      = "InvldOp"
	ErrCnctFld      = "CnctFld"
	ErrUncallable   = "Uncallable"
	ErrGlblRtrn     = "GlblRtrn"
	ErrInstFail     = "InstFail"
	ErrNotAnObj     = "NotAnObj"
	ErrNotAnInst    = "NotAnInst"
	ErrObjLcksPrp   = "ObjLcksPrp"
	ErrClssLcksMthd = "ClssLcksMthd"
	ErrNoInit       = "NoInit"
	ErrInvldArgs    = "InvldArgs"
	ErrNotIndxbl    = "NotIndxbl"
	ErrIndxBnds     = "IndxBnds"
	ErrNonNmIndx    = "NonNmIndx"
	ErrArrayDim     = "ArrayDim"
	ErrStckOvflw    = "StckOvflw"
	ErrErrStckOvflw = "ErrStckOvflw"
	ErrDvZr         = "DvZr"
	ErrAlloc        = "Alloc"
	ErrIntrnl       = "Intrnl"
	ErrDbgQuit      = "DbgQuit"
)

var defaultCategory = map[string]Category{
	ErrDbgQuit: CategoryExit,
}

func categoryFor(id string) Category {
	if c, ok := defaultCategory[id]; ok {
		return c
	}
	return CategoryHalt
}

// ScriptError is a raised error value: a tagged value
// with category, id, source location, and message.
type ScriptError struct {
	Category Category
	ID       string
	Line     int
	Position int
	Message  string
	Trace    []StackTraceEntry
}

// StackTraceEntry names one frame in a formatted stack trace.
type StackTraceEntry struct {
	Function string
	Module   string
	Line     int
}

func (e *ScriptError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.ID, e.Message)
	}
	return e.ID
}

// errorHandlerStack is the per-VM stack of handlers installed by PUSHERR.
type errorHandlerStack struct {
	handlers []handler
}

type handler struct {
	framePointer int // depth in the frame stack this handler guards
	dict         *dict.Table
}

const maxErrorHandlerDepth = 1024

func (s *errorHandlerStack) push(framePointer int, d *dict.Table) error {
	if len(s.handlers) >= maxErrorHandlerDepth {
		return &ScriptError{Category: CategoryHalt, ID: ErrErrStckOvflw, Message: "error handler stack overflow"}
	}
	s.handlers = append(s.handlers, handler{framePointer: framePointer, dict: d})
	return nil
}

func (s *errorHandlerStack) pop() (handler, bool) {
	if len(s.handlers) == 0 {
		return handler{}, false
	}
	h := s.handlers[len(s.handlers)-1]
	s.handlers = s.handlers[:len(s.handlers)-1]
	return h, true
}

func (s *errorHandlerStack) top() (handler, bool) {
	if len(s.handlers) == 0 {
		return handler{}, false
	}
	return s.handlers[len(s.handlers)-1], true
}

// Raise records a fresh ScriptError as the VM's pending error, filling in
// source location from the current instruction and a formatted stack
// trace from the live frame stack. It always returns a non-nil
// error so callers can `return vm.Raise(...)` directly.
func (vm *VM) Raise(id string, format string, args ...interface{}) error {
	e := &ScriptError{
		Category: categoryFor(id),
		ID:       id,
		Message:  fmt.Sprintf(format, args...),
		Trace:    vm.captureTrace(),
	}
	if info := vm.Program.Debug.InfoFromIndex(vm.pc); info.Line != 0 {
		e.Line = info.Line
		e.Position = info.Position
	}
	vm.lastErr = e
	return e
}

// captureTrace walks the live frame stack innermost-first.
func (vm *VM) captureTrace() []StackTraceEntry {
	trace := make([]StackTraceEntry, 0, len(vm.Frames))
	for i := len(vm.Frames) - 1; i >= 0; i-- {
		f := vm.Frames[i]
		name := f.Function.Name
		if name == "" {
			name = "<anonymous>"
		}
		info := vm.Program.Debug.InfoFromIndex(vm.pc)
		trace = append(trace, StackTraceEntry{Function: name, Module: info.Module, Line: info.Line})
	}
	return trace
}

// GetError returns the VM's pending error, if any.
func (vm *VM) GetError() *ScriptError { return vm.lastErr }

// ClearError drops the VM's pending error, readying it for another run.
func (vm *VM) ClearError() { vm.lastErr = nil }

// PushHandler installs an error handler guarding the current frame depth.
func (vm *VM) PushHandler(d *dict.Table) error {
	return vm.handlers.push(len(vm.Frames), d)
}

// PopHandler removes the innermost error handler.
func (vm *VM) PopHandler() (handler, bool) { return vm.handlers.pop() }

// dictFromValue extracts the *dict.Table backing a PUSHERR constant,
// which is always a DictionaryObject mapping error-id strings to branch
// offsets (encoded as ints).
func dictFromValue(v value.Value) *dict.Table {
	if !v.IsObject() {
		return nil
	}
	d, ok := v.AsObject().(*object.DictionaryObject)
	if !ok {
		return nil
	}
	return d.Table
}
