// Package object implements the heap object model: the
// uniform object header every heap value carries, and the dispatch
// surface the garbage collector and veneer protocol use to operate on
// objects without knowing their concrete Go type.
package object

import (
	"sync/atomic"

	"morpho/internal/value"
)

// Status is an object's reachability state. Unmanaged objects (program
// constants, interned symbols) are never freed by the collector; managed
// objects alternate between Unmarked and Marked across collections.
type Status uint8

const (
	Unmanaged Status = iota
	Unmarked
	Marked
)

// TypeID names an object's concrete type. The twelve core types are
// assigned fixed ids below; any "veneered" native object type obtains
// one dynamically via RegisterNativeType before the first instance of
// that type is allocated.
type TypeID uint16

const (
	TypeString TypeID = iota
	TypeFunction
	TypeClosure
	TypeUpvalue
	TypeClass
	TypeInstance
	TypeDictionary
	TypeList
	TypeArray
	TypeRange
	TypeInvocation
	TypeBuiltinFunction
	firstNativeTypeID
)

var nativeTypeNames = map[TypeID]string{}
var nextNativeTypeID = firstNativeTypeID

// RegisterNativeType allocates a fresh TypeID for a veneered native
// object type (e.g. a database handle) and records its display name.
// Call once per type, before constructing any instance.
func RegisterNativeType(name string) TypeID {
	id := nextNativeTypeID
	nextNativeTypeID++
	nativeTypeNames[id] = name
	return id
}

func (t TypeID) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeFunction:
		return "function"
	case TypeClosure:
		return "function"
	case TypeUpvalue:
		return "upvalue"
	case TypeClass:
		return "class"
	case TypeInstance:
		return "instance"
	case TypeDictionary:
		return "dictionary"
	case TypeList:
		return "list"
	case TypeArray:
		return "array"
	case TypeRange:
		return "range"
	case TypeInvocation:
		return "invocation"
	case TypeBuiltinFunction:
		return "function"
	}
	if name, ok := nativeTypeNames[t]; ok {
		return name
	}
	return "object"
}

// Object is the header every heap-allocated value embeds. Next
// links the object into whichever intrusive list owns it: a VM's heap
// list while it is managed, or a program's permanent list while it is
// program-bound.
type Object struct {
	Type   TypeID
	Status Status
	Next   value.Obj // intrusive link in the owning heap/program-bound list
	ID     uint64    // stable identity, used for identity-hash/identity-equal
}

var nextObjectID uint64

// NewHeader constructs a fresh header for a heap object of the given
// type, ready for a VM to link into its heap list via Bind. Status
// starts Unmarked rather than Unmanaged: callers that want the object to
// stay permanently outside GC accounting (program-bound constants,
// statically allocated built-in functions) set Status to Unmanaged
// themselves after construction, which Bind then treats as an
// instruction to skip linking it in at all.
func NewHeader(t TypeID) Object {
	return Object{Type: t, Status: Unmarked, ID: atomic.AddUint64(&nextObjectID, 1)}
}

func (o *Object) Header() *Object { return o }

// Identity supports the dict package's identity-hash fallback for object
// keys without needing unsafe.Pointer arithmetic.
func (o *Object) Identity() uintptr { return uintptr(o.ID) }

// ObjKind satisfies value.Obj; it is promoted to every concrete object
// type that embeds Object and does not override it.
func (o *Object) ObjKind() string { return o.Type.String() }

// ObjString satisfies value.Obj with a fallback default representation.
// Concrete types that need a richer textual form (strings, lists,
// dictionaries,...) shadow this method.
func (o *Object) ObjString() string { return "<" + o.Type.String() + ">" }

// ObjEqual satisfies value.Obj with identity equality; types with content
// equality (string) shadow this method.
func (o *Object) ObjEqual(other value.Obj) (bool, bool) { return false, false }

// Marker is implemented by the garbage collector and
// passed to Mark so objects can report the values/objects they reference
// without object needing to import the interp package.
type Marker interface {
	MarkValue(v value.Value)
	MarkObject(o value.Obj)
}

// Markable is implemented by any concrete object type that references
// other values or objects; the collector type-asserts for it during the
// mark phase.
type Markable interface {
	Mark(m Marker)
}

// Sizer is implemented by concrete types that want to report their heap
// footprint precisely for GC byte accounting; types
// that omit it are measured with a fixed per-object estimate.
type Sizer interface {
	Size() int64
}

// Cloner is implemented by concrete types with a veneer `clone` operation
// whose copy must not alias the original's top-level structure.
type Cloner interface {
	Clone() value.Obj
}

// DefaultObjectSize estimates the heap footprint of an object type that
// does not implement Sizer, for GC byte accounting.
const DefaultObjectSize = 32
