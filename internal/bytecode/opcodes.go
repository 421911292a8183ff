// Package bytecode implements the fixed-width register instruction
// format: each instruction is a 32-bit word
// carrying an opcode and A/B/C register-or-constant operands, with Bx
// (wide unsigned) and sBx (wide signed) encodings sharing the B+C bits
// for operations that need a single large operand.
package bytecode

// OpCode enumerates the instruction families the VM dispatches on.
type OpCode uint8

const (
	// Move / load
	NOP OpCode = iota
	MOV // MOV rA, rB rA = rB
	LCT // LCT rA, cBx rA = K(Bx)
	LGL // LGL rA, gBx rA = Globals[Bx]
	SGL // SGL rA, gBx Globals[Bx] = rA
	LUP // LUP rA, uB rA = Upvalue[B]
	SUP // SUP uA, rB Upvalue[A] = rB
	CLOSEUP // CLOSEUP rA close open upvalues >= rA
	LOADNIL // LOADNIL rA rA = nil
	LOADBOOL // LOADBOOL rA, B rA = bool(B)

	// Arithmetic
	ADD
	SUB
	MUL
	DIV
	POW

	// Logical / comparison
	NOT
	EQ
	NEQ
	LT
	LE

	// Control
	B // B sBx pc += sBx
	BIF // BIF rA, sBx if truthy(rA) pc += sBx
	BIFF // BIFF rA, sBx if falsy(rA) pc += sBx

	// Call
	CALL // CALL rA, B rA.. = rA(rA+1..rA+B)
	INVOKE // INVOKE rA, rB, C rA.. = rA.method[rB](rA+1..rA+C)
	RETURN // RETURN rA, rB return (A=0: nil; else rB)

	// Closures
	CLOSURE // CLOSURE rA, pB rA = closure(proto B)

	// Strings
	CAT // CAT rA, rB, rC rA = concat(rB..rC)

	// Output
	PRINT

	// Indexing / properties
	LIX // LIX rA, rB, rC rA = rB[rC]
	SIX // SIX rA, rB, rC rA[rB] = rC
	LPR // LPR rA, rB, cC rA = rB.prop[K(C)]
	SPR // SPR rA, cB, rC rA.prop[K(B)] = rC

	// Errors
	PUSHERR // PUSHERR cBx push handler, dict = K(Bx)
	POPERR // POPERR sBx pop handler, pc += sBx

	// Misc
	BREAK
	END
)

var names = [...]string{
	NOP: "NOP", MOV: "MOV", LCT: "LCT", LGL: "LGL", SGL: "SGL", LUP: "LUP", SUP: "SUP",
	CLOSEUP: "CLOSEUP", LOADNIL: "LOADNIL", LOADBOOL: "LOADBOOL",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", POW: "POW",
	NOT: "NOT", EQ: "EQ", NEQ: "NEQ", LT: "LT", LE: "LE",
	B: "B", BIF: "BIF", BIFF: "BIFF",
	CALL: "CALL", INVOKE: "INVOKE", RETURN: "RETURN",
	CLOSURE: "CLOSURE", CAT: "CAT", PRINT: "PRINT",
	LIX: "LIX", SIX: "SIX", LPR: "LPR", SPR: "SPR",
	PUSHERR: "PUSHERR", POPERR: "POPERR",
	BREAK: "BREAK", END: "END",
}

func (op OpCode) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "UNKNOWN"
}

// Instruction is a packed 32-bit word: 8-bit opcode, 8-bit A, then either
// two 8-bit operands (B, C) or one 16-bit wide operand (Bx/sBx).
type Instruction uint32

const (
	posOp = 0
	posA = 8
	posB = 16
	posC = 24

	maskByte = 0xFF
	maskBx = 0xFFFF

	maxSBx = maskBx >> 1
)

func ABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction(op) | Instruction(a)<<posA | Instruction(b)<<posB | Instruction(c)<<posC
}

func ABx(op OpCode, a uint8, bx uint16) Instruction {
	return Instruction(op) | Instruction(a)<<posA | Instruction(bx)<<posB
}

func AsBx(op OpCode, a uint8, sbx int32) Instruction {
	return ABx(op, a, uint16(sbx+maxSBx))
}

func (i Instruction) Op() OpCode { return OpCode(i & maskByte) }
func (i Instruction) A() uint8 { return uint8((i >> posA) & maskByte) }
func (i Instruction) B() uint8 { return uint8((i >> posB) & maskByte) }
func (i Instruction) C() uint8 { return uint8((i >> posC) & maskByte) }
func (i Instruction) Bx() uint16 { return uint16((i >> posB) & maskBx) }
func (i Instruction) SBx() int32 { return int32(i.Bx()) - maxSBx }
