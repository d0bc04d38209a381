/*
 * rv32sim - RVC compressed-instruction expander.
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

import "fmt"

// Illegal is returned by expand for any 16-bit parcel that has no 32-bit
// equivalent under this engine's subset of RVC.
type Illegal struct {
	Parcel uint16
}

func (e *Illegal) Error() string {
	return fmt.Sprintf("cpu: illegal compressed parcel %#04x", e.Parcel)
}

func pbit(p uint16, n uint) uint32 {
	return uint32((p >> n) & 1)
}

func pbits(p uint16, hi, lo uint) uint32 {
	width := hi - lo + 1
	mask := uint16((1 << width) - 1)
	return uint32((p >> lo) & mask)
}

// cReg maps a compressed 3-bit register field to the full x8..x15 range.
func cReg(field uint32) uint32 {
	return field + 8
}

// cjImm decodes the CJ-format 11-bit signed byte offset shared by C.J and
// C.JAL.
func cjImm(p uint16) uint32 {
	raw := pbit(p, 12)<<11 | pbit(p, 11)<<4 | pbits(p, 10, 9)<<8 | pbit(p, 8)<<10 |
		pbit(p, 7)<<6 | pbit(p, 6)<<7 | pbits(p, 5, 3)<<1 | pbit(p, 2)<<5
	return signExtend(raw, 12)
}

// cbImm decodes the CB-format 9-bit signed byte offset used by C.BEQZ/C.BNEZ.
func cbImm(p uint16) uint32 {
	raw := pbit(p, 12)<<8 | pbits(p, 11, 10)<<3 | pbits(p, 6, 5)<<6 | pbits(p, 4, 3)<<1 | pbit(p, 2)<<5
	return signExtend(raw, 9)
}

// expand maps a 16-bit RVC parcel to its 32-bit equivalent, per spec.md 4.3.
// It is a pure function: no engine state is read or written.
func expand(p uint16) (uint32, error) {
	quadrant := p & 0x3
	funct3 := pbits(p, 15, 13)

	switch quadrant {
	case 0b00:
		switch funct3 {
		case 0b000: // C.ADDI4SPN
			imm := pbits(p, 10, 7)<<6 | pbits(p, 12, 11)<<4 | pbit(p, 6)<<2 | pbit(p, 5)<<3
			if imm == 0 {
				return 0, &Illegal{Parcel: p}
			}
			rd := cReg(pbits(p, 4, 2))
			return encI(opImm, rd, 0, 2, imm), nil
		case 0b010: // C.LW
			imm := pbits(p, 12, 10)<<3 | pbit(p, 6)<<2 | pbit(p, 5)<<6
			rd := cReg(pbits(p, 4, 2))
			rs1 := cReg(pbits(p, 9, 7))
			return encI(opLoad, rd, 0b010, rs1, imm), nil
		case 0b110: // C.SW
			imm := pbits(p, 12, 10)<<3 | pbit(p, 6)<<2 | pbit(p, 5)<<6
			rs2 := cReg(pbits(p, 4, 2))
			rs1 := cReg(pbits(p, 9, 7))
			return encS(opStore, 0b010, rs1, rs2, imm), nil
		}
		return 0, &Illegal{Parcel: p}

	case 0b01:
		switch funct3 {
		case 0b000: // C.ADDI / C.NOP
			rd := pbits(p, 11, 7)
			imm := signExtend(pbit(p, 12)<<5|pbits(p, 6, 2), 6)
			return encI(opImm, rd, 0, rd, imm), nil
		case 0b001: // C.JAL
			return encJ(opJal, 1, cjImm(p)), nil
		case 0b010: // C.LI
			rd := pbits(p, 11, 7)
			imm := signExtend(pbit(p, 12)<<5|pbits(p, 6, 2), 6)
			return encI(opImm, rd, 0, 0, imm), nil
		case 0b011:
			rd := pbits(p, 11, 7)
			if rd == 2 { // C.ADDI16SP
				imm := signExtend(pbit(p, 12)<<9|pbit(p, 6)<<4|pbit(p, 5)<<6|pbits(p, 4, 3)<<7|pbit(p, 2)<<5, 10)
				if imm == 0 {
					return 0, &Illegal{Parcel: p}
				}
				return encI(opImm, 2, 0, 2, imm), nil
			}
			// C.LUI
			raw6 := pbit(p, 12)<<5 | pbits(p, 6, 2)
			if raw6 == 0 || rd == 0 {
				return 0, &Illegal{Parcel: p}
			}
			imm := signExtend(raw6, 6) << 12
			return encU(opLui, rd, imm), nil
		case 0b100:
			funct2 := pbits(p, 11, 10)
			rd := cReg(pbits(p, 9, 7))
			switch funct2 {
			case 0b00: // C.SRLI
				if pbit(p, 12) != 0 {
					return 0, &Illegal{Parcel: p}
				}
				shamt := pbits(p, 6, 2)
				return encShift(opImm, rd, 0b101, rd, shamt, 0x00), nil
			case 0b01: // C.SRAI
				if pbit(p, 12) != 0 {
					return 0, &Illegal{Parcel: p}
				}
				shamt := pbits(p, 6, 2)
				return encShift(opImm, rd, 0b101, rd, shamt, 0x20), nil
			case 0b10: // C.ANDI
				imm := signExtend(pbit(p, 12)<<5|pbits(p, 6, 2), 6)
				return encI(opImm, rd, 0b111, rd, imm), nil
			case 0b11:
				if pbit(p, 12) != 0 {
					return 0, &Illegal{Parcel: p}
				}
				rs2 := cReg(pbits(p, 4, 2))
				switch pbits(p, 6, 5) {
				case 0b00: // C.SUB
					return encR(opOp, rd, 0, rd, rs2, 0x20), nil
				case 0b01: // C.XOR
					return encR(opOp, rd, 0b100, rd, rs2, 0x00), nil
				case 0b10: // C.OR
					return encR(opOp, rd, 0b110, rd, rs2, 0x00), nil
				case 0b11: // C.AND
					return encR(opOp, rd, 0b111, rd, rs2, 0x00), nil
				}
			}
			return 0, &Illegal{Parcel: p}
		case 0b101: // C.J
			return encJ(opJal, 0, cjImm(p)), nil
		case 0b110: // C.BEQZ
			rs1 := cReg(pbits(p, 9, 7))
			return encB(opBranch, 0b000, rs1, 0, cbImm(p)), nil
		case 0b111: // C.BNEZ
			rs1 := cReg(pbits(p, 9, 7))
			return encB(opBranch, 0b001, rs1, 0, cbImm(p)), nil
		}
		return 0, &Illegal{Parcel: p}

	case 0b10:
		switch funct3 {
		case 0b000: // C.SLLI
			if pbit(p, 12) != 0 {
				return 0, &Illegal{Parcel: p}
			}
			rd := pbits(p, 11, 7)
			shamt := pbits(p, 6, 2)
			return encShift(opImm, rd, 0b001, rd, shamt, 0x00), nil
		case 0b010: // C.LWSP
			rd := pbits(p, 11, 7)
			if rd == 0 {
				return 0, &Illegal{Parcel: p}
			}
			imm := pbit(p, 12)<<5 | pbits(p, 6, 4)<<2 | pbits(p, 3, 2)<<6
			return encI(opLoad, rd, 0b010, 2, imm), nil
		case 0b100:
			rdRs1 := pbits(p, 11, 7)
			rs2 := pbits(p, 6, 2)
			if pbit(p, 12) == 0 {
				if rs2 == 0 { // C.JR
					if rdRs1 == 0 {
						return 0, &Illegal{Parcel: p}
					}
					return encI(opJalr, 0, 0, rdRs1, 0), nil
				}
				// C.MV
				if rdRs1 == 0 {
					return 0, &Illegal{Parcel: p}
				}
				return encR(opOp, rdRs1, 0, 0, rs2, 0x00), nil
			}
			if rdRs1 == 0 && rs2 == 0 { // C.EBREAK
				return encSystem(opSystem, 1), nil
			}
			if rs2 == 0 { // C.JALR
				return encI(opJalr, 1, 0, rdRs1, 0), nil
			}
			// C.ADD
			if rdRs1 == 0 {
				return 0, &Illegal{Parcel: p}
			}
			return encR(opOp, rdRs1, 0, rdRs1, rs2, 0x00), nil
		case 0b110: // C.SWSP
			rs2 := pbits(p, 6, 2)
			imm := pbits(p, 12, 9)<<2 | pbits(p, 8, 7)<<6
			return encS(opStore, 0b010, 2, rs2, imm), nil
		}
		return 0, &Illegal{Parcel: p}
	}

	return 0, &Illegal{Parcel: p}
}
