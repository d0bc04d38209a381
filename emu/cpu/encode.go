/*
 * rv32sim - 32-bit instruction word encoders.
 *
 * Copyright 2026, rv32sim contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package cpu

// Major opcodes (bits 6:0 of a full-width instruction).
const (
	opLoad    uint32 = 0x03
	opMiscMem uint32 = 0x0F
	opImm     uint32 = 0x13
	opAuipc   uint32 = 0x17
	opStore   uint32 = 0x23
	opAmo     uint32 = 0x2F
	opOp      uint32 = 0x33
	opLui     uint32 = 0x37
	opBranch  uint32 = 0x63
	opJalr    uint32 = 0x67
	opJal     uint32 = 0x6F
	opSystem  uint32 = 0x73
)

// signExtend widens the low `bits` bits of v, treating bit (bits-1) as the
// sign, to a full 32-bit two's-complement value.
func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}

func encR(op, rd, f3, rs1, rs2, f7 uint32) uint32 {
	return op | (rd&0x1F)<<7 | (f3&0x7)<<12 | (rs1&0x1F)<<15 | (rs2&0x1F)<<20 | (f7&0x7F)<<25
}

// encI encodes an I-type instruction; imm is the raw 32-bit two's-complement
// value, of which only the low 12 bits are used.
func encI(op, rd, f3, rs1, imm uint32) uint32 {
	return op | (rd&0x1F)<<7 | (f3&0x7)<<12 | (rs1&0x1F)<<15 | (imm&0xFFF)<<20
}

// encShift encodes a shift-immediate instruction (SLLI/SRLI/SRAI), whose
// upper 7 bits carry a fixed variant selector rather than sign-extended
// immediate bits.
func encShift(op, rd, f3, rs1, shamt, variant uint32) uint32 {
	return op | (rd&0x1F)<<7 | (f3&0x7)<<12 | (rs1&0x1F)<<15 | (shamt&0x1F)<<20 | (variant&0x7F)<<25
}

func encS(op, f3, rs1, rs2, imm uint32) uint32 {
	imm4_0 := imm & 0x1F
	imm11_5 := (imm >> 5) & 0x7F
	return op | imm4_0<<7 | (f3&0x7)<<12 | (rs1&0x1F)<<15 | (rs2&0x1F)<<20 | imm11_5<<25
}

// encB encodes a branch; imm is the byte offset (bit 0 is always 0).
func encB(op, f3, rs1, rs2, imm uint32) uint32 {
	imm11 := (imm >> 11) & 1
	imm4_1 := (imm >> 1) & 0xF
	imm10_5 := (imm >> 5) & 0x3F
	imm12 := (imm >> 12) & 1
	return op | imm11<<7 | imm4_1<<8 | (f3&0x7)<<12 | (rs1&0x1F)<<15 | (rs2&0x1F)<<20 | imm10_5<<25 | imm12<<31
}

// encU encodes LUI/AUIPC; imm must already occupy bits 31:12 (the low 12
// bits are masked off).
func encU(op, rd, imm uint32) uint32 {
	return op | (rd&0x1F)<<7 | (imm & 0xFFFFF000)
}

// encJ encodes JAL; imm is the byte offset (bit 0 is always 0).
func encJ(op, rd, imm uint32) uint32 {
	imm19_12 := (imm >> 12) & 0xFF
	imm11 := (imm >> 11) & 1
	imm10_1 := (imm >> 1) & 0x3FF
	imm20 := (imm >> 20) & 1
	return op | (rd&0x1F)<<7 | imm19_12<<12 | imm11<<20 | imm10_1<<21 | imm20<<31
}

func encSystem(op, imm12 uint32) uint32 {
	return op | (imm12&0xFFF)<<20
}
