package program

import (
	"morpho/internal/object"
	"morpho/internal/value"
)

// AnnotationKind discriminates the debug-annotation stream's record
// types.
type AnnotationKind uint8

const (
	AnnElement AnnotationKind = iota
	AnnFunction
	AnnClass
	AnnModule
	AnnPushErr
	AnnPopErr
	AnnRegister
)

// Annotation is one record of the stream. Only the fields relevant to
// Kind are populated.
type Annotation struct {
	Kind AnnotationKind

	Line, Position, NInstr int // AnnElement
	Func   *object.FunctionObject // AnnFunction
	Class  *object.ClassObject    // AnnClass
	Module string                 // AnnModule
	Dict   value.Value            // AnnPushErr
	Reg    int                    // AnnRegister
	Symbol string                 // AnnRegister
}

// DebugInfo is the annotation stream mapping instruction indices back to
// source coordinates and symbol names.
type DebugInfo struct {
	stream []Annotation
}

func NewDebugInfo() *DebugInfo { return &DebugInfo{} }

// AddElement records the source span of the next instruction, coalescing
// with the previous element (incrementing its NInstr) when the
// coordinates match.
func (d *DebugInfo) AddElement(line, position int) {
	if n := len(d.stream); n > 0 {
		last := &d.stream[n-1]
		if last.Kind == AnnElement && last.Line == line && last.Position == position {
			last.NInstr++
			return
		}
	}
	d.stream = append(d.stream, Annotation{Kind: AnnElement, Line: line, Position: position, NInstr: 1})
}

func (d *DebugInfo) AddFunction(fn *object.FunctionObject) {
	d.stream = append(d.stream, Annotation{Kind: AnnFunction, Func: fn})
}

func (d *DebugInfo) AddClass(cls *object.ClassObject) {
	d.stream = append(d.stream, Annotation{Kind: AnnClass, Class: cls})
}

func (d *DebugInfo) AddModule(name string) {
	d.stream = append(d.stream, Annotation{Kind: AnnModule, Module: name})
}

func (d *DebugInfo) AddPushErr(dict value.Value) {
	d.stream = append(d.stream, Annotation{Kind: AnnPushErr, Dict: dict})
}

func (d *DebugInfo) AddPopErr() {
	d.stream = append(d.stream, Annotation{Kind: AnnPopErr})
}

func (d *DebugInfo) AddRegisterSymbol(reg int, symbol string) {
	d.stream = append(d.stream, Annotation{Kind: AnnRegister, Reg: reg, Symbol: symbol})
}

// SourceInfo is the accumulated context InfoFromIndex reports: the
// module, source position, and enclosing function/class at a given
// instruction index.
type SourceInfo struct {
	Module   string
	Line     int
	Position int
	Func     *object.FunctionObject
	Class    *object.ClassObject
}

// InfoFromIndex sweeps the annotation stream accumulating context,
// stopping once the run of elements covering pc has been found.
func (d *DebugInfo) InfoFromIndex(pc int) SourceInfo {
	var info SourceInfo
	covered := 0
	for _, a := range d.stream {
		switch a.Kind {
		case AnnFunction:
			info.Func = a.Func
		case AnnClass:
			info.Class = a.Class
		case AnnModule:
			info.Module = a.Module
		case AnnElement:
			if pc >= covered && pc < covered+a.NInstr {
				info.Line = a.Line
				info.Position = a.Position
				return info
			}
			covered += a.NInstr
		}
	}
	return info
}

// IndexFromLine returns the first instruction index whose source span
// starts at the given line.
func (d *DebugInfo) IndexFromLine(line int) (int, bool) {
	covered := 0
	for _, a := range d.stream {
		if a.Kind == AnnElement {
			if a.Line == line {
				return covered, true
			}
			covered += a.NInstr
		}
	}
	return 0, false
}

// IndexFromFunction returns the entry instruction index of the named
// function (within an optional class), used to set function breakpoints.
func (d *DebugInfo) IndexFromFunction(className, funcName string) (int, bool) {
	var curClass string
	for _, a := range d.stream {
		switch a.Kind {
		case AnnClass:
			curClass = a.Class.Name
		case AnnFunction:
			if a.Func.Name == funcName && (className == "" || curClass == className) {
				return a.Func.Entry, true
			}
		}
	}
	return 0, false
}

// SymbolsForFunction returns the register->symbol bindings visible at pc
// within fn, used by the debugger's `print`
// and `info registers` commands.
func (d *DebugInfo) SymbolsForFunction(fn *object.FunctionObject, pc int) map[int]string {
	out := make(map[int]string)
	var curFunc *object.FunctionObject
	covered := 0
	for _, a := range d.stream {
		switch a.Kind {
		case AnnFunction:
			curFunc = a.Func
		case AnnElement:
			covered += a.NInstr
		case AnnRegister:
			if curFunc == fn && covered <= pc {
				out[a.Reg] = a.Symbol
			}
		}
	}
	return out
}
