package interp

import (
	"morpho/internal/object"
	"morpho/internal/value"
)

// veneerRegistry binds a native object TypeID to the scripting-level
// class providing its method surface. This
// is the one genuinely dynamic, runtime-populated registry in the
// runtime: unlike the collector and printer, which dispatch through Go's
// own interface vtables, the set of native types is open and grows as
// host code registers new ones, so a lookup table is the honest
// representation rather than a type switch that would need editing for
// every addition.
var veneerRegistry = map[object.TypeID]*object.ClassObject{}

// RegisterVeneer binds cls as the method surface for every object whose
// header reports type id t. Built-in container veneers (list, dictionary,
// array, range, string) and any additional native type a host embeds
// (e.g. a database handle) are registered the same way, typically during
// program setup before the first instance of that type is constructed.
func RegisterVeneer(t object.TypeID, cls *object.ClassObject) {
	veneerRegistry[t] = cls
}

// VeneerClassFor looks up the registered class for a native type id.
func VeneerClassFor(t object.TypeID) (*object.ClassObject, bool) {
	cls, ok := veneerRegistry[t]
	return cls, ok
}

// classOf returns the class governing method/property lookup for v:
// an instance's own class, or the registered veneer class for any other
// object type.
func classOf(v value.Value) (*object.ClassObject, bool) {
	if !v.IsObject() {
		return nil, false
	}
	if inst, ok := v.AsObject().(*object.InstanceObject); ok {
		return inst.Class, true
	}
	if h, ok := v.AsObject().(headerer); ok {
		return VeneerClassFor(h.Header().Type)
	}
	return nil, false
}
