/*
 * rv32sim - Branch, JAL, and JALR handlers.
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

func opBranchHandler(e *Engine, d *decoded) {
	rs1v := e.reg(d.rs1)
	rs2v := e.reg(d.rs2)

	var taken bool
	switch d.funct3 {
	case 0b000: // BEQ
		taken = rs1v == rs2v
	case 0b001: // BNE
		taken = rs1v != rs2v
	case 0b100: // BLT
		taken = int32(rs1v) < int32(rs2v)
	case 0b101: // BGE
		taken = int32(rs1v) >= int32(rs2v)
	case 0b110: // BLTU
		taken = rs1v < rs2v
	case 0b111: // BGEU
		taken = rs1v >= rs2v
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}
	if !taken {
		return
	}

	target := e.PC + immB(d.word)
	if target&e.alignmentMask != 0 {
		e.raiseTrap(CauseInstrAddrMisaligned, target)
		return
	}
	e.nextPC = target
}

func opJalHandler(e *Engine, d *decoded) {
	target := e.PC + immJ(d.word)
	if target&e.alignmentMask != 0 {
		e.raiseTrap(CauseInstrAddrMisaligned, target)
		return
	}
	e.setReg(d.rd, e.PC+e.instSize)
	e.nextPC = target
}

func opJalrHandler(e *Engine, d *decoded) {
	target := (e.reg(d.rs1) + immI(d.word)) &^ 1
	if target&e.alignmentMask != 0 {
		e.raiseTrap(CauseInstrAddrMisaligned, target)
		return
	}
	e.setReg(d.rd, e.PC+e.instSize)
	e.nextPC = target
}
