package bytecode

import "testing"

func TestABCRoundTrip(t *testing.T) {
	i := ABC(ADD, 1, 2, 3)
	if i.Op() != ADD {
		t.Errorf("Op() = %v, want ADD", i.Op())
	}
	if i.A() != 1 || i.B() != 2 || i.C() != 3 {
		t.Errorf("A/B/C = %d/%d/%d, want 1/2/3", i.A(), i.B(), i.C())
	}
}

func TestABxRoundTrip(t *testing.T) {
	i := ABx(LCT, 5, 0xBEEF)
	if i.Op() != LCT {
		t.Errorf("Op() = %v, want LCT", i.Op())
	}
	if i.A() != 5 {
		t.Errorf("A() = %d, want 5", i.A())
	}
	if i.Bx() != 0xBEEF {
		t.Errorf("Bx() = %#x, want 0xBEEF", i.Bx())
	}
}

func TestAsBxRoundTripPositiveAndNegative(t *testing.T) {
	tests := []int32{0, 1, -1, 1000, -1000, maxSBx, -maxSBx}
	for _, sbx := range tests {
		i := AsBx(B, 0, sbx)
		if got := i.SBx(); got != sbx {
			t.Errorf("AsBx(%d).SBx() = %d, want %d", sbx, got, sbx)
		}
	}
}

func TestOpCodeStringKnownAndUnknown(t *testing.T) {
	if ADD.String() != "ADD" {
		t.Errorf("ADD.String() = %q, want ADD", ADD.String())
	}
	unknown := OpCode(255)
	if unknown.String() != "UNKNOWN" {
		t.Errorf("unknown opcode String() = %q, want UNKNOWN", unknown.String())
	}
}

func TestInstructionFieldsDoNotBleedIntoEachOther(t *testing.T) {
	i := ABC(CALL, 0xFF, 0x01, 0x02)
	if i.A() != 0xFF || i.B() != 0x01 || i.C() != 0x02 {
		t.Fatalf("fields bled across boundaries: A=%d B=%d C=%d", i.A(), i.B(), i.C())
	}
}
