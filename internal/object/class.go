package object

import (
	"morpho/internal/dict"
	"morpho/internal/value"
)

// ClassObject is a user-defined class: a name, an optional superclass,
// and a method dictionary. Method lookup for an instance walks
// fields first, then the class chain.
type ClassObject struct {
	Object
	Name    string
	Super   *ClassObject
	Methods *dict.Table
}

func NewClass(name string, super *ClassObject) *ClassObject {
	return &ClassObject{
		Object:  NewHeader(TypeClass),
		Name:    name,
		Super:   super,
		Methods: dict.NewTable(),
	}
}

func (c *ClassObject) ObjString() string { return "<class " + c.Name + ">" }

// Resolve looks a method up the class chain, starting at c and walking
// Super links until a class defines it.
func (c *ClassObject) Resolve(name value.Value) (value.Value, bool) {
	for k := c; k != nil; k = k.Super {
		if m, ok := k.Methods.Get(name); ok {
			return m, true
		}
	}
	return value.Nil, false
}

func (c *ClassObject) Mark(m Marker) {
	if c.Super != nil {
		m.MarkObject(c.Super)
	}
	c.Methods.Each(func(k, v value.Value) {
		m.MarkValue(k)
		m.MarkValue(v)
	})
}

// InstanceObject is a class instance with its own field dictionary.
type InstanceObject struct {
	Object
	Class  *ClassObject
	Fields *dict.Table
}

func NewInstance(class *ClassObject) *InstanceObject {
	return &InstanceObject{
		Object: NewHeader(TypeInstance),
		Class:  class,
		Fields: dict.NewTable(),
	}
}

func (i *InstanceObject) ObjString() string {
	return "<" + i.Class.Name + " instance>"
}

func (i *InstanceObject) Mark(m Marker) {
	m.MarkObject(i.Class)
	i.Fields.Each(func(k, v value.Value) {
		m.MarkValue(k)
		m.MarkValue(v)
	})
}
