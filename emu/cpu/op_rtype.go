/*
 * rv32sim - Register-register ALU and M-extension handlers.
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

const minInt32 = -1 << 31

func opOpHandler(e *Engine, d *decoded) {
	rs1v := e.reg(d.rs1)
	rs2v := e.reg(d.rs2)
	var result uint32

	switch d.funct7 {
	case 0x00:
		switch d.funct3 {
		case 0b000: // ADD
			result = rs1v + rs2v
		case 0b001: // SLL
			result = rs1v << (rs2v & 0x1F)
		case 0b010: // SLT
			result = boolU32(int32(rs1v) < int32(rs2v))
		case 0b011: // SLTU
			result = boolU32(rs1v < rs2v)
		case 0b100: // XOR
			result = rs1v ^ rs2v
		case 0b101: // SRL
			result = rs1v >> (rs2v & 0x1F)
		case 0b110: // OR
			result = rs1v | rs2v
		case 0b111: // AND
			result = rs1v & rs2v
		default:
			e.raiseTrap(CauseIllegalInstruction, d.word)
			return
		}
	case 0x20:
		switch d.funct3 {
		case 0b000: // SUB
			result = rs1v - rs2v
		case 0b101: // SRA
			result = uint32(int32(rs1v) >> (rs2v & 0x1F))
		default:
			e.raiseTrap(CauseIllegalInstruction, d.word)
			return
		}
	case 0x01:
		switch d.funct3 {
		case 0b000: // MUL
			result = uint32(int32(rs1v) * int32(rs2v))
		case 0b001: // MULH
			a, b := int64(int32(rs1v)), int64(int32(rs2v))
			result = uint32((a * b) >> 32)
		case 0b010: // MULHSU
			a, b := int64(int32(rs1v)), int64(uint64(rs2v))
			result = uint32((a * b) >> 32)
		case 0b011: // MULHU
			a, b := uint64(rs1v), uint64(rs2v)
			result = uint32((a * b) >> 32)
		case 0b100: // DIV
			switch {
			case rs2v == 0:
				result = 0xFFFFFFFF
			case int32(rs1v) == minInt32 && int32(rs2v) == -1:
				result = rs1v
			default:
				result = uint32(int32(rs1v) / int32(rs2v))
			}
		case 0b101: // DIVU
			if rs2v == 0 {
				result = 0xFFFFFFFF
			} else {
				result = rs1v / rs2v
			}
		case 0b110: // REM
			switch {
			case rs2v == 0:
				result = rs1v
			case int32(rs1v) == minInt32 && int32(rs2v) == -1:
				result = 0
			default:
				result = uint32(int32(rs1v) % int32(rs2v))
			}
		case 0b111: // REMU
			if rs2v == 0 {
				result = rs1v
			} else {
				result = rs1v % rs2v
			}
		}
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}

	e.setReg(d.rd, result)
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
