package cpu

import "testing"

func TestExpandCLI(t *testing.T) {
	// C.LI a0, 1 -> 0x4505
	word, err := expand(0x4505)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	d := decode32(word, 2)
	if d.opcode != opImm || d.funct3 != 0 || d.rd != 10 {
		t.Fatalf("unexpected decode of C.LI: %+v", d)
	}
	if immI(word) != 1 {
		t.Fatalf("C.LI imm = %d, want 1", int32(immI(word)))
	}
}

func TestExpandCLUISignExtends(t *testing.T) {
	// C.LUI with a 6-bit immediate of 0x3F (all ones): rd=x1, bits[6:2]=0x1F, bit12=1.
	// parcel layout: 011 1 00001 11111 01 (quadrant1, funct3=011)
	var p uint16
	p |= 0b01             // quadrant
	p |= 1 << 2           // op bits [6:2] = 0b11111 -> bits 2..6
	p |= 0x1F << 2
	p |= 1 << 7 // rd bits [11:7] = 1
	p |= 0b011 << 13
	p |= 1 << 12 // sign bit
	word, err := expand(p)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	d := decode32(word, 2)
	if d.opcode != opLui {
		t.Fatalf("expected LUI, got opcode %#x", d.opcode)
	}
	if immU(word) != 0xFFFFF000 {
		t.Fatalf("C.LUI imm = %#x, want %#x", immU(word), uint32(0xFFFFF000))
	}
}

func TestExpandReservedZeroParcelIllegal(t *testing.T) {
	if _, err := expand(0x0000); err == nil {
		t.Fatalf("expected illegal for the all-zero parcel (C.ADDI4SPN, imm=0)")
	}
}

func TestExpandAndDirect32Agree(t *testing.T) {
	// C.MV a0, a1 -> 0x852E: should match ADD a0, x0, a1
	word, err := expand(0x852E)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := encR(opOp, 10, 0, 0, 11, 0)
	if word != want {
		t.Fatalf("expand(C.MV) = %#08x, want %#08x", word, want)
	}
}
