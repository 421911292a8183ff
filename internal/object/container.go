package object

import (
	"fmt"
	"strings"

	"morpho/internal/dict"
	"morpho/internal/value"
)

// DictionaryObject is the dictionary container: an open-addressed
// hash table with linear probing and tombstones.
type DictionaryObject struct {
	Object
	Table *dict.Table
}

func NewDictionary() *DictionaryObject {
	return &DictionaryObject{Object: NewHeader(TypeDictionary), Table: dict.NewTable()}
}

func (d *DictionaryObject) ObjString() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	first := true
	d.Table.Each(func(k, v value.Value) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %s", k.String(), v.String())
	})
	sb.WriteString(" }")
	return sb.String()
}

func (d *DictionaryObject) Mark(m Marker) {
	d.Table.Each(func(k, v value.Value) {
		m.MarkValue(k)
		m.MarkValue(v)
	})
}

func (d *DictionaryObject) Clone() value.Obj {
	return &DictionaryObject{Object: NewHeader(TypeDictionary), Table: d.Table.Clone()}
}

// ListObject is the dynamic-array list container.
type ListObject struct {
	Object
	Elements *dict.DynArray
}

func NewList(capacity int) *ListObject {
	return &ListObject{Object: NewHeader(TypeList), Elements: dict.NewDynArray(capacity)}
}

func NewListFrom(elems []value.Value) *ListObject {
	l := NewList(len(elems))
	for _, e := range elems {
		l.Elements.Append(e)
	}
	return l
}

func (l *ListObject) ObjString() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for i, v := range l.Elements.Slice() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString(" ]")
	return sb.String()
}

func (l *ListObject) Mark(m Marker) {
	for _, v := range l.Elements.Slice() {
		m.MarkValue(v)
	}
}

func (l *ListObject) Clone() value.Obj {
	return &ListObject{Object: NewHeader(TypeList), Elements: l.Elements.Clone()}
}

// ArrayObject is a fixed-shape n-dimensional array: Dims holds the
// size of each dimension and Elements is the row-major backing store.
type ArrayObject struct {
	Object
	Dims     []int
	Elements []value.Value
}

func NewArray(dims []int) *ArrayObject {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return &ArrayObject{
		Object:   NewHeader(TypeArray),
		Dims:     append([]int(nil), dims...),
		Elements: make([]value.Value, n),
	}
}

// Offset computes the row-major element offset for a set of indices,
// reporting ArrayDim (wrong dimension count) or IndxBnds (out of range)
// as distinct error strings.
func (a *ArrayObject) Offset(indices []int) (int, error) {
	if len(indices) != len(a.Dims) {
		return 0, fmt.Errorf("ArrayDim")
	}
	offset := 0
	stride := 1
	for i := len(a.Dims) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= a.Dims[i] {
			return 0, fmt.Errorf("IndxBnds")
		}
		offset += indices[i] * stride
		stride *= a.Dims[i]
	}
	return offset, nil
}

func (a *ArrayObject) ObjString() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for i, v := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString(" ]")
	return sb.String()
}

func (a *ArrayObject) Mark(m Marker) {
	for _, v := range a.Elements {
		m.MarkValue(v)
	}
}

func (a *ArrayObject) Clone() value.Obj {
	elems := make([]value.Value, len(a.Elements))
	copy(elems, a.Elements)
	return &ArrayObject{Object: NewHeader(TypeArray), Dims: append([]int(nil), a.Dims...), Elements: elems}
}

// RangeObject is a (start, end, step) range with precomputed length.
type RangeObject struct {
	Object
	Start, End, Step float64
	IsInt            bool
	Count            int
}

func NewRange(start, end, step float64, isInt bool) *RangeObject {
	count := 0
	if step != 0 {
		if (step > 0 && end >= start) || (step < 0 && end <= start) {
			count = int((end-start)/step) + 1
			if count < 0 {
				count = 0
			}
		}
	}
	return &RangeObject{Object: NewHeader(TypeRange), Start: start, End: end, Step: step, IsInt: isInt, Count: count}
}

// At returns the i-th element of the range.
func (r *RangeObject) At(i int) (value.Value, bool) {
	if i < 0 || i >= r.Count {
		return value.Nil, false
	}
	x := r.Start + float64(i)*r.Step
	if r.IsInt {
		return value.Int(int32(x)), true
	}
	return value.Float(x), true
}

func (r *RangeObject) ObjString() string {
	return fmt.Sprintf("%s..%s", value.Float(r.Start).String(), value.Float(r.End).String())
}
