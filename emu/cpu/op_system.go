/*
 * rv32sim - SYSTEM opcode: ECALL/EBREAK/MRET/WFI and CSR instructions.
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

const (
	imm12ECall = 0x000
	imm12EBreak = 0x001
	imm12MRet   = 0x302
	imm12WFI    = 0x105
)

func opSystemHandler(e *Engine, d *decoded) {
	if d.funct3 == 0 {
		switch d.word >> 20 {
		case imm12ECall:
			// The debug-bridge convention overrides any installed mtvec
			// handler: test harnesses and logging macros must keep
			// working even under real guest trap handlers (spec.md 9).
			if e.reg(17) >= debugSyscallBase && e.hostSyscall != nil {
				if !e.hostSyscall(e) {
					e.reservationValid = false
					e.enterTrap(CauseEnvCallFromMMode, 0)
				}
				return
			}
			e.raiseTrap(CauseEnvCallFromMMode, 0)
		case imm12EBreak:
			e.raiseTrap(CauseBreakpoint, 0)
		case imm12MRet:
			e.mret()
		case imm12WFI:
			// treated as a NOP; there is no external wakeup source to
			// block on in this single-hart, synchronous engine.
		default:
			e.raiseTrap(CauseIllegalInstruction, d.word)
		}
		return
	}
	e.executeCSR(d)
}

// executeCSR implements CSRRW/CSRRS/CSRRC and their immediate forms. The
// immediate variants reuse the rs1 bit position to carry a 5-bit
// zero-extended unsigned immediate rather than a register number
// (spec.md 4.2), which decode32 already exposes as d.rs1.
func (e *Engine) executeCSR(d *decoded) {
	addr := uint16(d.word >> 20)
	baseOp := d.funct3 &^ 0x4
	immediate := d.funct3&0x4 != 0

	var operand uint32
	if immediate {
		operand = d.rs1
	} else {
		operand = e.reg(d.rs1)
	}

	readOnly, err := e.CSR.IsReadOnly(addr)
	if err != nil {
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}
	// CSRRS/CSRRC (and their immediate forms) with a nonzero operand
	// against a fully read-only CSR attempt a real write and must trap;
	// CSRRW always writes and is not subject to this check.
	if readOnly && operand != 0 && (baseOp == 0b010 || baseOp == 0b011) {
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}

	var old uint32
	switch baseOp {
	case 0b001: // CSRRW / CSRRWI
		old, err = e.CSR.Write(addr, operand)
	case 0b010: // CSRRS / CSRRSI
		old, err = e.CSR.Set(addr, operand)
	case 0b011: // CSRRC / CSRRCI
		old, err = e.CSR.Clear(addr, operand)
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}
	if err != nil {
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}

	e.setReg(d.rd, old)
	e.syncAlignment()
}

// opMiscMemHandler covers FENCE and FENCE.I: both are NOPs, since the
// engine is single-threaded and the decode cache is content-addressed
// (spec.md 4.5.9).
func opMiscMemHandler(e *Engine, d *decoded) {}
