/*
 * rv32sim - Trap entry/exit and interrupt polling.
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

import (
	"log/slog"

	"github.com/opencore-sim/rv32sim/emu/csr"
	"github.com/opencore-sim/rv32sim/util/debugflags"
)

// raiseTrap delivers a synchronous exception. While mtvec == 0, the trap
// is offered to the host syscall bridge instead of being vectored into
// guest code; the bridge may resume execution by setting next_pc itself.
// Reservations are cleared on any trap per spec.md 3 invariant list.
func (e *Engine) raiseTrap(cause, mtval uint32) {
	e.reservationValid = false
	if mtvec, err := e.CSR.Read(csr.Mtvec); err == nil && mtvec == 0 && e.hostSyscall != nil {
		if e.hostSyscall(e) {
			return
		}
	}
	e.enterTrap(cause, mtval)
}

// raiseInterrupt delivers an asynchronous trap. Unlike raiseTrap it never
// consults the host bridge: interrupts are purely an architectural
// concern between the timer/external source and guest code.
func (e *Engine) raiseInterrupt(cause uint32) {
	e.reservationValid = false
	e.enterTrap(cause, 0)
	// The loop has already copied next_pc into PC for this iteration, so
	// the vector is applied to PC directly.
	e.PC = e.nextPC
}

// enterTrap performs the CSR side effects common to every trap entry.
// mepc is always taken from e.PC: for a synchronous trap PC still holds
// the faulting instruction's address (the loop has not yet advanced it);
// for an asynchronous one the loop has already advanced PC to the
// instruction that would have executed next, which is exactly what
// spec.md 4.6 requires interrupts to save.
func (e *Engine) enterTrap(cause, mtval uint32) {
	if debugflags.Enabled(debugflags.Trap) {
		slog.Debug("trap entry", "cause", cause, "mtval", mtval, "pc", e.PC)
	}

	e.CSR.Write(csr.Mepc, e.PC)
	e.CSR.Write(csr.Mcause, cause)
	e.CSR.Write(csr.Mtval, mtval)

	mstatus, _ := e.CSR.Read(csr.Mstatus)
	wasEnabled := mstatus&csr.MstatusMIE != 0
	mstatus &^= csr.MstatusMIE | csr.MstatusMPIE
	if wasEnabled {
		mstatus |= csr.MstatusMPIE
	}
	e.CSR.Write(csr.Mstatus, mstatus)

	mtvec, _ := e.CSR.Read(csr.Mtvec)
	e.nextPC = mtvec &^ 0x3
}

// mret unwinds one trap level: MIE is restored from MPIE, MPIE is set
// (per the unprivileged spec, trap return always leaves MPIE at 1 in a
// machine-only implementation), and next_pc resumes at mepc, masked to
// the current alignment so returning into compressed code is legal.
func (e *Engine) mret() {
	mstatus, _ := e.CSR.Read(csr.Mstatus)
	wasPrevEnabled := mstatus&csr.MstatusMPIE != 0
	mstatus &^= csr.MstatusMIE
	if wasPrevEnabled {
		mstatus |= csr.MstatusMIE
	}
	mstatus |= csr.MstatusMPIE
	e.CSR.Write(csr.Mstatus, mstatus)

	mepc, _ := e.CSR.Read(csr.Mepc)
	e.nextPC = mepc &^ e.alignmentMask
}

// pollInterrupts is consulted once per loop iteration (spec.md 4.9 step
// 7). The highest-priority pending-and-enabled interrupt is taken:
// external, then timer, then software.
func (e *Engine) pollInterrupts() {
	mstatus, _ := e.CSR.Read(csr.Mstatus)
	if mstatus&csr.MstatusMIE == 0 {
		return
	}
	mip, _ := e.CSR.Read(csr.Mip)
	mie, _ := e.CSR.Read(csr.Mie)
	pending := mip & mie
	switch {
	case pending&csr.MEI != 0:
		e.raiseInterrupt(CauseMachineExternalInterrupt)
	case pending&csr.MTI != 0:
		e.raiseInterrupt(CauseMachineTimerInterrupt)
	case pending&csr.MSI != 0:
		e.raiseInterrupt(CauseMachineSoftwareInterrupt)
	}
}
