package value

import (
	"math"
	"testing"
)

type fakeObj struct {
	s          string
	equalTo    Obj
	equalCheck bool
}

func (f *fakeObj) ObjKind() string { return "fake" }
func (f *fakeObj) ObjString() string { return f.s }
func (f *fakeObj) ObjEqual(other Obj) (bool, bool) {
	if f.equalCheck {
		return f.equalTo == other, true
	}
	return false, false
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil, false},
		{"false", False, false},
		{"true", True, true},
		{"zero int", Int(0), true},
		{"zero float", Float(0), true},
		{"object", Object(&fakeObj{s: "x"}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Truthy(); got != tc.want {
				t.Errorf("Truthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualNumericPromotion(t *testing.T) {
	if !Equal(Int(2), Float(2.0)) {
		t.Error("Equal(Int(2), Float(2.0)) = false, want true")
	}
	if Equal(Int(2), Float(2.5)) {
		t.Error("Equal(Int(2), Float(2.5)) = true, want false")
	}
	if !Equal(Int(-1), Int(-1)) {
		t.Error("Equal(Int(-1), Int(-1)) = false, want true")
	}
}

func TestEqualObjectIdentityVsContent(t *testing.T) {
	a := &fakeObj{s: "a"}
	b := &fakeObj{s: "b"}
	if Equal(Object(a), Object(b)) {
		t.Error("distinct objects with no content equality compared equal")
	}
	if !Equal(Object(a), Object(a)) {
		t.Error("same object pointer did not compare equal")
	}

	c := &fakeObj{s: "c", equalCheck: true}
	c.equalTo = c
	if !Equal(Object(c), Object(c)) {
		t.Error("content-equal object did not compare equal to itself")
	}
}

func TestCompareOrdersNumbersOnly(t *testing.T) {
	if cmp, err := Compare(Int(1), Int(2)); err != nil || cmp != -1 {
		t.Errorf("Compare(1,2) = %d, %v; want -1, nil", cmp, err)
	}
	if cmp, err := Compare(Float(3), Int(3)); err != nil || cmp != 0 {
		t.Errorf("Compare(3.0,3) = %d, %v; want 0, nil", cmp, err)
	}
	if _, err := Compare(Object(&fakeObj{}), Int(1)); err != ErrNotOrdered {
		t.Errorf("Compare(object, int) error = %v, want ErrNotOrdered", err)
	}
}

func TestStringRendersSpecialFloats(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Float(1.5), "1.5"},
		{Bool(true), "true"},
		{Nil, "nil"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.Inf(-1)), "-inf"},
		{Float(math.NaN()), "nan"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	if got := Int(1).TypeName(); got != "int" {
		t.Errorf("TypeName() = %q, want int", got)
	}
	if got := Object(&fakeObj{}).TypeName(); got != "fake" {
		t.Errorf("TypeName() = %q, want fake", got)
	}
}
