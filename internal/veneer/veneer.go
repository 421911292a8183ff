// Package veneer builds the scripting-level classes that give the core
// container types (list, dictionary, array, range, string) their method
// surface, and registers them with the interpreter's veneer registry. It
// is the reference instance of the veneer protocol: any host embedding a
// new native type follows the same pattern demonstrated here (see
// internal/dbveneer for a non-core example).
package veneer

import (
	"morpho/internal/dict"
	"morpho/internal/interp"
	"morpho/internal/object"
	"morpho/internal/value"
)

func method(name string, min, max int, fn object.BuiltinFn) (value.Value, value.Value) {
	return value.Object(object.NewString(name)), value.Object(object.NewBuiltinFunction(name, min, max, fn))
}

func newVeneerClass(name string, methods ...[2]value.Value) *object.ClassObject {
	cls := object.NewClass(name, nil)
	for _, m := range methods {
		cls.Methods.Set(m[0], m[1])
	}
	return cls
}

func pair(name string, min, max int, fn object.BuiltinFn) [2]value.Value {
	k, v := method(name, min, max, fn)
	return [2]value.Value{k, v}
}

// RegisterDefaults installs the veneer classes for every core container
// type. Call once during program/VM setup, before running any script
// that constructs lists, dictionaries, arrays, ranges, or strings.
func RegisterDefaults() {
	interp.RegisterVeneer(object.TypeList, listClass())
	interp.RegisterVeneer(object.TypeDictionary, dictClass())
	interp.RegisterVeneer(object.TypeArray, arrayClass())
	interp.RegisterVeneer(object.TypeRange, rangeClass())
	interp.RegisterVeneer(object.TypeString, stringClass())
}

func listClass() *object.ClassObject {
	return newVeneerClass("List",
		pair("count", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			l := args[0].AsObject().(*object.ListObject)
			return value.Int(int32(l.Elements.Len())), nil
		}),
		pair("append", 1, -1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			l := args[0].AsObject().(*object.ListObject)
			for _, a := range args[1:] {
				l.Elements.Append(a)
			}
			return args[0], nil
		}),
		pair("pop", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			l := args[0].AsObject().(*object.ListObject)
			v, ok := l.Elements.Pop()
			if !ok {
				return value.Nil, ctx.Raise("IndxBnds", "pop from an empty list")
			}
			return v, nil
		}),
		pair("enumerate", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			l := args[0].AsObject().(*object.ListObject)
			if !args[1].IsInt() {
				return value.Nil, ctx.Raise("NonNmIndx", "enumerate index must be an integer")
			}
			i := int(args[1].AsInt())
			if i < 0 {
				return value.Int(int32(l.Elements.Len())), nil
			}
			v, ok := l.Elements.Get(i)
			if !ok {
				return value.Nil, ctx.Raise("IndxBnds", "enumerate index %d out of bounds", i)
			}
			return v, nil
		}),
		pair("clone", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			l := args[0].AsObject().(*object.ListObject)
			c := l.Clone()
			ctx.Bind(c)
			return value.Object(c), nil
		}),
		pair("print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return value.Object(object.NewString(args[0].String())), nil
		}),
	)
}

func dictClass() *object.ClassObject {
	return newVeneerClass("Dictionary",
		pair("count", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			d := args[0].AsObject().(*object.DictionaryObject)
			return value.Int(int32(d.Table.Count())), nil
		}),
		pair("enumerate", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			d := args[0].AsObject().(*object.DictionaryObject)
			keys := d.Table.Keys()
			if !args[1].IsInt() {
				return value.Nil, ctx.Raise("NonNmIndx", "enumerate index must be an integer")
			}
			i := int(args[1].AsInt())
			if i < 0 {
				return value.Int(int32(len(keys))), nil
			}
			if i >= len(keys) {
				return value.Nil, ctx.Raise("IndxBnds", "enumerate index %d out of bounds", i)
			}
			return keys[i], nil
		}),
		pair("clone", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			d := args[0].AsObject().(*object.DictionaryObject)
			c := d.Clone()
			ctx.Bind(c)
			return value.Object(c), nil
		}),
		pair("print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return value.Object(object.NewString(args[0].String())), nil
		}),
		pair("+", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return dictSetOp(ctx, args, (*dict.Table).Union)
		}),
		pair("-", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return dictSetOp(ctx, args, (*dict.Table).Difference)
		}),
	)
}

func dictSetOp(ctx object.NativeContext, args []value.Value, op func(*dict.Table, *dict.Table) *dict.Table) (value.Value, error) {
	a := args[0].AsObject().(*object.DictionaryObject)
	b, ok := args[1].AsObject().(*object.DictionaryObject)
	if !ok {
		return value.Nil, ctx.Raise("InvldOp", "expected a dictionary operand")
	}
	out := object.NewDictionary()
	out.Table = op(a.Table, b.Table)
	ctx.Bind(out)
	return value.Object(out), nil
}

func arrayClass() *object.ClassObject {
	return newVeneerClass("Array",
		pair("count", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			a := args[0].AsObject().(*object.ArrayObject)
			return value.Int(int32(len(a.Elements))), nil
		}),
		pair("dimensions", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			a := args[0].AsObject().(*object.ArrayObject)
			elems := make([]value.Value, len(a.Dims))
			for i, d := range a.Dims {
				elems[i] = value.Int(int32(d))
			}
			l := object.NewListFrom(elems)
			ctx.Bind(l)
			return value.Object(l), nil
		}),
		pair("clone", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			a := args[0].AsObject().(*object.ArrayObject)
			c := a.Clone()
			ctx.Bind(c)
			return value.Object(c), nil
		}),
		pair("print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return value.Object(object.NewString(args[0].String())), nil
		}),
	)
}

func rangeClass() *object.ClassObject {
	return newVeneerClass("Range",
		pair("count", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			r := args[0].AsObject().(*object.RangeObject)
			return value.Int(int32(r.Count)), nil
		}),
		pair("enumerate", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			r := args[0].AsObject().(*object.RangeObject)
			if !args[1].IsInt() {
				return value.Nil, ctx.Raise("NonNmIndx", "enumerate index must be an integer")
			}
			i := int(args[1].AsInt())
			if i < 0 {
				return value.Int(int32(r.Count)), nil
			}
			v, ok := r.At(i)
			if !ok {
				return value.Nil, ctx.Raise("IndxBnds", "enumerate index %d out of bounds", i)
			}
			return v, nil
		}),
		pair("print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return value.Object(object.NewString(args[0].String())), nil
		}),
	)
}

func stringClass() *object.ClassObject {
	return newVeneerClass("String",
		pair("count", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			s := args[0].AsObject().(*object.StringObject)
			return value.Int(int32(len(s.Value))), nil
		}),
		pair("enumerate", 1, 1, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			s := args[0].AsObject().(*object.StringObject)
			if !args[1].IsInt() {
				return value.Nil, ctx.Raise("NonNmIndx", "enumerate index must be an integer")
			}
			i := int(args[1].AsInt())
			if i < 0 {
				return value.Int(int32(len(s.Value))), nil
			}
			if i >= len(s.Value) {
				return value.Nil, ctx.Raise("IndxBnds", "enumerate index %d out of bounds", i)
			}
			r := object.NewString(string(s.Value[i]))
			ctx.Bind(r)
			return value.Object(r), nil
		}),
		// []= never mutates the receiver in place;
		// it returns a new string with the byte at the given index replaced,
		// leaving the caller to bind the result wherever they need it.
		pair("[]=", 2, 2, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			s := args[0].AsObject().(*object.StringObject)
			if !args[1].IsInt() {
				return value.Nil, ctx.Raise("NonNmIndx", "string index must be an integer")
			}
			i := int(args[1].AsInt())
			if i < 0 || i >= len(s.Value) {
				return value.Nil, ctx.Raise("IndxBnds", "index %d out of bounds", i)
			}
			repl := args[2].String()
			buf := []byte(s.Value)
			out := append(append(append([]byte(nil), buf[:i]...), repl...), buf[i+1:]...)
			r := object.NewString(string(out))
			ctx.Bind(r)
			return value.Object(r), nil
		}),
		pair("clone", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			s := args[0].AsObject().(*object.StringObject)
			r := object.NewString(s.Value)
			ctx.Bind(r)
			return value.Object(r), nil
		}),
		pair("print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return args[0], nil
		}),
	)
}
