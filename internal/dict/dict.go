// Package dict implements the collections backing the runtime's containers: an
// open-addressed hash table with linear probing and tombstones (used by
// dictionaries, class method tables, and instance field tables), a
// symbol-interning table built on top of it, and a small dynamic array
// used by lists.
package dict

import (
	"golang.org/x/exp/slices"
	"morpho/internal/value"
)

type entry struct {
	key       value.Value
	val       value.Value
	occupied  bool
	tombstone bool
}

// Table is the dictionary object's (key,value) store. Equality on
// keys is value.Equal, so interned symbol keys compare by
// identity and everything else compares structurally.
type Table struct {
	entries []entry
	count   int // occupied, non-tombstone slots
	used    int // occupied slots including tombstones, drives resize
}

const minCapacity = 8
const maxLoadFactor = 0.7

// NewTable returns an empty dictionary table.
func NewTable() *Table {
	return &Table{entries: make([]entry, minCapacity)}
}

func hashValue(v value.Value) uint64 {
	switch v.Kind() {
	case value.KindNil:
		return 0x9e3779b97f4a7c15
	case value.KindBool:
		if v.AsBool() {
			return 2
		}
		return 1
	case value.KindInt:
		return fnv1a64(uint64(uint32(v.AsInt())))
	case value.KindFloat:
		return fnv1a64(uint64(v.AsFloat()))
	case value.KindObject:
		if h, ok := v.AsObject().(interface{ Hash() uint64 }); ok {
			return h.Hash()
		}
		return uint64(uintptr(objIdentity(v)))
	}
	return 0
}

func fnv1a64(x uint64) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < 8; i++ {
		h ^= x & 0xff
		h *= 1099511628211
		x >>= 8
	}
	return h
}

// objIdentity extracts a stable integer from an object pointer for
// identity hashing; implemented via a type assertion to avoid importing
// package object (which would cycle back into dict through DictionaryObject).
func objIdentity(v value.Value) uintptr {
	if p, ok := v.AsObject().(interface{ Identity() uintptr }); ok {
		return p.Identity()
	}
	return 0
}

func (t *Table) resizeIfNeeded() {
	if float64(t.used+1) <= float64(len(t.entries))*maxLoadFactor {
		return
	}
	old := t.entries
	newCap := len(t.entries) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}
	t.entries = make([]entry, newCap)
	t.count = 0
	t.used = 0
	for _, e := range old {
		if e.occupied && !e.tombstone {
			t.Set(e.key, e.val)
		}
	}
}

func (t *Table) find(key value.Value) (idx int, found bool) {
	mask := uint64(len(t.entries) - 1)
	i := hashValue(key) & mask
	firstTombstone := -1
	for probes := uint64(0); probes < uint64(len(t.entries)); probes++ {
		e := &t.entries[i]
		if !e.occupied {
			if firstTombstone != -1 {
				return firstTombstone, false
			}
			return int(i), false
		}
		if e.tombstone {
			if firstTombstone == -1 {
				firstTombstone = int(i)
			}
		} else if value.Equal(e.key, key) {
			return int(i), true
		}
		i = (i + 1) & mask
	}
	if firstTombstone != -1 {
		return firstTombstone, false
	}
	return -1, false
}

// Set inserts or updates key -> val.
func (t *Table) Set(key, val value.Value) {
	t.resizeIfNeeded()
	idx, found := t.find(key)
	e := &t.entries[idx]
	if !found {
		if !e.occupied {
			t.used++
		}
		t.count++
	}
	e.key = key
	e.val = val
	e.occupied = true
	e.tombstone = false
}

// Get looks up a key, reporting whether it was present.
func (t *Table) Get(key value.Value) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	idx, found := t.find(key)
	if !found {
		return value.Nil, false
	}
	return t.entries[idx].val, true
}

// Delete removes a key, leaving a tombstone behind so later probes
// through this slot still find keys that hashed past it.
func (t *Table) Delete(key value.Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx, found := t.find(key)
	if !found {
		return false
	}
	t.entries[idx].tombstone = true
	t.entries[idx].val = value.Nil
	t.count--
	return true
}

// Count returns the number of live (key,value) pairs.
func (t *Table) Count() int { return t.count }

// Keys returns the live keys. Order is not hash-bucket order: it is
// sorted by each key's printed form, so debugger/print output is
// deterministic across runs (golang.org/x/exp/slices).
func (t *Table) Keys() []value.Value {
	keys := make([]value.Value, 0, t.count)
	for _, e := range t.entries {
		if e.occupied && !e.tombstone {
			keys = append(keys, e.key)
		}
	}
	slices.SortFunc(keys, func(a, b value.Value) int {
		as, bs := a.String(), b.String()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return keys
}

// Each calls fn for every live (key,value) pair in Keys order.
func (t *Table) Each(fn func(key, val value.Value)) {
	for _, k := range t.Keys() {
		v, _ := t.Get(k)
		fn(k, v)
	}
}

// Clone returns a shallow copy: a new table with the same (key,value)
// pairs, so mutating the clone never affects the original.
func (t *Table) Clone() *Table {
	out := NewTable()
	t.Each(func(k, v value.Value) { out.Set(k, v) })
	return out
}

// Union, Intersect and Difference are dictionary set operations. The
// veneer layer exposes Union as `+` and Difference as `-`; Intersect has
// no veneer method.
func (t *Table) Union(other *Table) *Table {
	out := t.Clone()
	other.Each(func(k, v value.Value) { out.Set(k, v) })
	return out
}

func (t *Table) Intersect(other *Table) *Table {
	out := NewTable()
	t.Each(func(k, v value.Value) {
		if _, ok := other.Get(k); ok {
			out.Set(k, v)
		}
	})
	return out
}

func (t *Table) Difference(other *Table) *Table {
	out := NewTable()
	t.Each(func(k, v value.Value) {
		if _, ok := other.Get(k); !ok {
			out.Set(k, v)
		}
	})
	return out
}

// InternTable canonicalizes strings so that symbol equality reduces to
// identity equality.
type InternTable struct {
	table map[string]value.Value
}

func NewInternTable() *InternTable {
	return &InternTable{table: make(map[string]value.Value)}
}

// Intern returns the canonical Value for s, constructing one with make
// the first time s is seen.
func (it *InternTable) Intern(s string, make func(string) value.Value) value.Value {
	if v, ok := it.table[s]; ok {
		return v
	}
	v := make(s)
	it.table[s] = v
	return v
}

func (it *InternTable) Lookup(s string) (value.Value, bool) {
	v, ok := it.table[s]
	return v, ok
}

// DynArray is the dynamic array backing list objects. It
// wraps a Go slice and leaves growth to Go's built-in append.
type DynArray struct {
	data []value.Value
}

func NewDynArray(capacity int) *DynArray {
	return &DynArray{data: make([]value.Value, 0, capacity)}
}

func (d *DynArray) Len() int { return len(d.data) }

func (d *DynArray) Get(i int) (value.Value, bool) {
	if i < 0 || i >= len(d.data) {
		return value.Nil, false
	}
	return d.data[i], true
}

func (d *DynArray) Set(i int, v value.Value) bool {
	if i < 0 || i >= len(d.data) {
		return false
	}
	d.data[i] = v
	return true
}

func (d *DynArray) Append(v value.Value) { d.data = append(d.data, v) }

func (d *DynArray) Pop() (value.Value, bool) {
	if len(d.data) == 0 {
		return value.Nil, false
	}
	v := d.data[len(d.data)-1]
	d.data = d.data[:len(d.data)-1]
	return v, true
}

func (d *DynArray) Slice() []value.Value { return d.data }

func (d *DynArray) Clone() *DynArray {
	out := make([]value.Value, len(d.data))
	copy(out, d.data)
	return &DynArray{data: out}
}
