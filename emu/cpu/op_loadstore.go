/*
 * rv32sim - Load and store handlers.
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

func opLoadHandler(e *Engine, d *decoded) {
	addr := e.reg(d.rs1) + immI(d.word)

	switch d.funct3 {
	case 0b000: // LB
		v, err := e.loadWidth(addr, 1)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.setReg(d.rd, signExtend(v, 8))
	case 0b001: // LH
		v, err := e.loadWidth(addr, 2)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.setReg(d.rd, signExtend(v, 16))
	case 0b010: // LW
		v, err := e.loadWidth(addr, 4)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.setReg(d.rd, v)
	case 0b100: // LBU
		v, err := e.loadWidth(addr, 1)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.setReg(d.rd, v)
	case 0b101: // LHU
		v, err := e.loadWidth(addr, 2)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.setReg(d.rd, v)
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
	}
}

// opStoreHandler clears the LR/SC reservation unconditionally on entry:
// every store, regardless of target address, invalidates it (spec.md 9).
func opStoreHandler(e *Engine, d *decoded) {
	addr := e.reg(d.rs1) + immS(d.word)
	val := e.reg(d.rs2)

	var width uint32
	switch d.funct3 {
	case 0b000:
		width = 1
	case 0b001:
		width = 2
	case 0b010:
		width = 4
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}

	e.reservationValid = false
	if err := e.storeWidth(addr, width, val); err != nil {
		e.raiseTrap(CauseStoreAccessFault, addr)
	}
}
