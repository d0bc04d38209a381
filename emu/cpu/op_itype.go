/*
 * rv32sim - Register-immediate ALU handlers.
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

// opImmHandler covers ADDI/SLTI/SLTIU/XORI/ORI/ANDI and the
// shift-immediate trio, which share the opcode but use the upper 7 bits
// of the word as a variant selector instead of a sign-extended immediate
// (spec.md 4.5.2). The shift amount occupies the same bit span as an
// R-type rs2 field, which decode32 already split out as d.rs2.
func opImmHandler(e *Engine, d *decoded) {
	rs1v := e.reg(d.rs1)

	switch d.funct3 {
	case 0b000: // ADDI
		e.setReg(d.rd, rs1v+immI(d.word))
	case 0b010: // SLTI
		e.setReg(d.rd, boolU32(int32(rs1v) < int32(immI(d.word))))
	case 0b011: // SLTIU
		e.setReg(d.rd, boolU32(rs1v < immI(d.word)))
	case 0b100: // XORI
		e.setReg(d.rd, rs1v^immI(d.word))
	case 0b110: // ORI
		e.setReg(d.rd, rs1v|immI(d.word))
	case 0b111: // ANDI
		e.setReg(d.rd, rs1v&immI(d.word))
	case 0b001: // SLLI
		if d.funct7 != 0x00 {
			e.raiseTrap(CauseIllegalInstruction, d.word)
			return
		}
		e.setReg(d.rd, rs1v<<(d.rs2&0x1F))
	case 0b101: // SRLI / SRAI
		switch d.funct7 {
		case 0x00:
			e.setReg(d.rd, rs1v>>(d.rs2&0x1F))
		case 0x20:
			e.setReg(d.rd, uint32(int32(rs1v)>>(d.rs2&0x1F)))
		default:
			e.raiseTrap(CauseIllegalInstruction, d.word)
		}
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
	}
}
