package interp

import (
	"math"

	"morpho/internal/bytecode"
	"morpho/internal/object"
	"morpho/internal/value"
)

var operatorMethodName = map[bytecode.OpCode]string{
	bytecode.ADD: "+",
	bytecode.SUB: "-",
	bytecode.MUL: "*",
	bytecode.DIV: "/",
	bytecode.POW: "^",
}

// binaryArith implements ADD/SUB/MUL/DIV/POW: a native fast path
// for numeric operands, falling back to the left operand's operator
// method, then the right operand's, before raising InvldOp.
func (vm *VM) binaryArith(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return vm.numericArith(op, a, b)
	}
	name := operatorMethodName[op]
	if v, err, handled := vm.tryOperatorMethod(name, a, b); handled {
		return v, err
	}
	if v, err, handled := vm.tryOperatorMethod(name, b, a); handled {
		return v, err
	}
	return value.Nil, vm.Raise(ErrInvldOp, "invalid operand types %s and %s for '%s'", a.TypeName(), b.TypeName(), name)
}

func (vm *VM) numericArith(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	bothInt := a.IsInt() && b.IsInt()
	switch op {
	case bytecode.ADD:
		if bothInt {
			return value.Int(a.AsInt() + b.AsInt()), nil
		}
		return value.Float(a.AsFloat64() + b.AsFloat64()), nil
	case bytecode.SUB:
		if bothInt {
			return value.Int(a.AsInt() - b.AsInt()), nil
		}
		return value.Float(a.AsFloat64() - b.AsFloat64()), nil
	case bytecode.MUL:
		if bothInt {
			return value.Int(a.AsInt() * b.AsInt()), nil
		}
		return value.Float(a.AsFloat64() * b.AsFloat64()), nil
	case bytecode.DIV:
		bf := b.AsFloat64()
		if bf == 0 {
			return value.Nil, vm.Raise(ErrDvZr, "division by zero")
		}
		return value.Float(a.AsFloat64() / bf), nil
	case bytecode.POW:
		return value.Float(math.Pow(a.AsFloat64(), b.AsFloat64())), nil
	}
	return value.Nil, vm.Raise(ErrInvldOp, "unsupported arithmetic opcode %s", op)
}

// tryOperatorMethod looks up name on recv's class and, if present, calls
// it with arg as the sole argument. handled reports whether a method was
// found at all, independent of whether calling it errored.
func (vm *VM) tryOperatorMethod(name string, recv, arg value.Value) (result value.Value, err error, handled bool) {
	cls, ok := classOf(recv)
	if !ok {
		return value.Nil, nil, false
	}
	m, ok := cls.Resolve(value.Object(object.NewString(name)))
	if !ok {
		return value.Nil, nil, false
	}
	v, callErr := vm.Call(m, recv, []value.Value{arg})
	return v, callErr, true
}

// compare implements EQ/NEQ/LT/LE. Equality is value.Equal;
// ordering is defined only on numbers unless the left operand's
// class defines a comparison method.
func (vm *VM) compare(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.EQ:
		return value.Bool(value.Equal(a, b)), nil
	case bytecode.NEQ:
		return value.Bool(!value.Equal(a, b)), nil
	}
	c, err := value.Compare(a, b)
	if err != nil {
		if v, cerr, handled := vm.tryOperatorMethod("<=>", a, b); handled {
			if cerr != nil {
				return value.Nil, cerr
			}
			c = int(v.AsInt())
		} else {
			return value.Nil, vm.Raise(ErrInvldOp, "values of type %s and %s cannot be ordered", a.TypeName(), b.TypeName())
		}
	}
	switch op {
	case bytecode.LT:
		return value.Bool(c < 0), nil
	case bytecode.LE:
		return value.Bool(c <= 0), nil
	}
	return value.Nil, vm.Raise(ErrInvldOp, "unsupported comparison opcode %s", op)
}

// concat implements CAT: stringify and join a contiguous run of
// registers.
func (vm *VM) concat(regs []value.Value) value.Value {
	total := 0
	for _, r := range regs {
		total += len(r.String())
	}
	buf := make([]byte, 0, total)
	for _, r := range regs {
		buf = append(buf, r.String()...)
	}
	s := object.NewString(string(buf))
	vm.Bind(s)
	return value.Object(s)
}

// index implements LIX: rA = rB[rC] over the core containers, falling
// back to a `[]` method lookup for instances and veneered native types.
func (vm *VM) index(recv, key value.Value) (value.Value, error) {
	switch c := recv.AsObject().(type) {
	case *object.ListObject:
		i, err := requireIndex(vm, key, c.Elements.Len())
		if err != nil {
			return value.Nil, err
		}
		v, _ := c.Elements.Get(i)
		return v, nil
	case *object.DictionaryObject:
		v, ok := c.Table.Get(key)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case *object.RangeObject:
		if !key.IsInt() {
			return value.Nil, vm.Raise(ErrNonNmIndx, "range index must be an integer")
		}
		v, ok := c.At(int(key.AsInt()))
		if !ok {
			return value.Nil, vm.Raise(ErrIndxBnds, "range index %d out of bounds", key.AsInt())
		}
		return v, nil
	case *object.StringObject:
		i, err := requireIndex(vm, key, len(c.Value))
		if err != nil {
			return value.Nil, err
		}
		s := object.NewString(string(c.Value[i]))
		vm.Bind(s)
		return value.Object(s), nil
	case *object.ArrayObject:
		idx, err := arrayIndices(vm, key)
		if err != nil {
			return value.Nil, err
		}
		off, derr := c.Offset(idx)
		if derr != nil {
			return value.Nil, vm.Raise(derr.Error(), "%s", derr.Error())
		}
		return c.Elements[off], nil
	}
	if v, err, handled := vm.tryOperatorMethod("[]", recv, key); handled {
		return v, err
	}
	return value.Nil, vm.Raise(ErrNotIndxbl, "value of type %s is not indexable", recv.TypeName())
}

// setIndex implements SIX: rA[rB] = rC. Strings never mutate in place:
// on a string, SIX calls the String veneer's `[]=`, which returns a new
// StringObject; setIndex discards that result, so rA is left unchanged.
func (vm *VM) setIndex(recv, key, val value.Value) error {
	switch c := recv.AsObject().(type) {
	case *object.ListObject:
		i, err := requireIndex(vm, key, c.Elements.Len())
		if err != nil {
			return err
		}
		c.Elements.Set(i, val)
		return nil
	case *object.DictionaryObject:
		c.Table.Set(key, val)
		return nil
	case *object.ArrayObject:
		idx, err := arrayIndices(vm, key)
		if err != nil {
			return err
		}
		off, derr := c.Offset(idx)
		if derr != nil {
			return vm.Raise(derr.Error(), "%s", derr.Error())
		}
		c.Elements[off] = val
		return nil
	}
	if cls, ok := classOf(recv); ok {
		if m, ok := cls.Resolve(value.Object(object.NewString("[]="))); ok {
			_, err := vm.Call(m, recv, []value.Value{key, val})
			return err
		}
	}
	return vm.Raise(ErrNotIndxbl, "value of type %s is not indexable", recv.TypeName())
}

func requireIndex(vm *VM, key value.Value, length int) (int, error) {
	if !key.IsInt() {
		return 0, vm.Raise(ErrNonNmIndx, "index must be an integer")
	}
	i := int(key.AsInt())
	if i < 0 || i >= length {
		return 0, vm.Raise(ErrIndxBnds, "index %d out of bounds (length %d)", i, length)
	}
	return i, nil
}

func arrayIndices(vm *VM, key value.Value) ([]int, error) {
	if key.IsInt() {
		return []int{int(key.AsInt())}, nil
	}
	if key.IsObject() {
		if lst, ok := key.AsObject().(*object.ListObject); ok {
			out := make([]int, lst.Elements.Len())
			for i := range out {
				v, _ := lst.Elements.Get(i)
				if !v.IsInt() {
					return nil, vm.Raise(ErrNonNmIndx, "array index must be an integer")
				}
				out[i] = int(v.AsInt())
			}
			return out, nil
		}
	}
	return nil, vm.Raise(ErrNonNmIndx, "array index must be an integer or list of integers")
}

// getProperty implements LPR: rA = rB.prop. Fields take priority
// over methods on instances;
// a method found but not a field is bound into an InvocationObject so it
// can be called or passed around as a first-class value.
func (vm *VM) getProperty(recv value.Value, name string) (value.Value, error) {
	if inst, ok := recv.AsObject().(*object.InstanceObject); ok {
		if v, ok := inst.Fields.Get(value.Object(object.NewString(name))); ok {
			return v, nil
		}
	}
	cls, ok := classOf(recv)
	if !ok {
		return value.Nil, vm.Raise(ErrNotAnObj, "value of type %s has no properties", recv.TypeName())
	}
	m, ok := cls.Resolve(value.Object(object.NewString(name)))
	if !ok {
		return value.Nil, vm.Raise(ErrObjLcksPrp, "%s has no property '%s'", cls.Name, name)
	}
	inv := object.NewInvocation(recv, m)
	vm.Bind(inv)
	return value.Object(inv), nil
}

// setProperty implements SPR: rA.prop = rC. Only instances carry a
// mutable field table; veneered native types expose mutation through a
// `[]=`-style method instead.
func (vm *VM) setProperty(recv value.Value, name string, val value.Value) error {
	inst, ok := recv.AsObject().(*object.InstanceObject)
	if !ok {
		return vm.Raise(ErrNotAnInst, "value of type %s has no settable properties", recv.TypeName())
	}
	inst.Fields.Set(value.Object(object.NewString(name)), val)
	return nil
}
