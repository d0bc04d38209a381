/*
 * rv32sim - RV32A atomic memory operation handlers.
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

// opAmoHandler covers LR.W, SC.W, and the nine read-modify-write AMOs.
// Only word width is supported; aq/rl bits are ignored since the engine
// is single-threaded (spec.md 5).
func opAmoHandler(e *Engine, d *decoded) {
	if d.funct3 != 0b010 {
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}
	addr := e.reg(d.rs1)
	if addr&0x3 != 0 {
		e.raiseTrap(CauseStoreAddrMisaligned, addr)
		return
	}

	funct5 := d.word >> 27
	switch funct5 {
	case 0b00010: // LR.W
		v, err := e.loadWidth(addr, 4)
		if err != nil {
			e.raiseTrap(CauseLoadAccessFault, addr)
			return
		}
		e.reservationValid = true
		e.reservationAddr = addr
		e.setReg(d.rd, v)
		return

	case 0b00011: // SC.W
		success := e.reservationValid && e.reservationAddr == addr
		e.reservationValid = false
		if !success {
			e.setReg(d.rd, 1)
			return
		}
		if err := e.storeWidth(addr, 4, e.reg(d.rs2)); err != nil {
			e.raiseTrap(CauseStoreAccessFault, addr)
			return
		}
		e.setReg(d.rd, 0)
		return
	}

	old, err := e.loadWidth(addr, 4)
	if err != nil {
		e.raiseTrap(CauseLoadAccessFault, addr)
		return
	}
	rs2v := e.reg(d.rs2)

	var newVal uint32
	switch funct5 {
	case 0b00000: // AMOADD
		newVal = old + rs2v
	case 0b00001: // AMOSWAP
		newVal = rs2v
	case 0b00100: // AMOXOR
		newVal = old ^ rs2v
	case 0b01100: // AMOAND
		newVal = old & rs2v
	case 0b01000: // AMOOR
		newVal = old | rs2v
	case 0b10000: // AMOMIN
		if int32(old) < int32(rs2v) {
			newVal = old
		} else {
			newVal = rs2v
		}
	case 0b10100: // AMOMAX
		if int32(old) > int32(rs2v) {
			newVal = old
		} else {
			newVal = rs2v
		}
	case 0b11000: // AMOMINU
		if old < rs2v {
			newVal = old
		} else {
			newVal = rs2v
		}
	case 0b11100: // AMOMAXU
		if old > rs2v {
			newVal = old
		} else {
			newVal = rs2v
		}
	default:
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}

	e.reservationValid = false
	if err := e.storeWidth(addr, 4, newVal); err != nil {
		e.raiseTrap(CauseStoreAccessFault, addr)
		return
	}
	e.setReg(d.rd, old)
}
