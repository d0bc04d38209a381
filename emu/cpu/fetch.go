/*
 * rv32sim - Fetch/execute loop.
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

	"github.com/opencore-sim/rv32sim/util/debugflags"
)

// Step executes exactly one instruction per the eight-step sequence in
// spec.md 4.9 and reports whether the loop should stop (termination
// requested by the guest or the host, or a cooperative cancellation).
func (e *Engine) Step() bool {
	if debugflags.Enabled(debugflags.Inst) {
		slog.Debug("step", "pc", e.PC, "instret", e.instret)
	}

	if e.PC&e.alignmentMask != 0 {
		e.raiseTrap(CauseInstrAddrMisaligned, e.PC)
	} else if d, ok := e.fetchDecode(); ok {
		e.instSize = d.size
		e.nextPC = e.PC + d.size
		e.dispatch(d)
	}

	e.X[0] = 0
	e.PC = e.nextPC
	e.instret++
	e.Timer.Tick()
	e.pollInterrupts()

	return e.terminate || e.stopRequested
}

// fetchDecode performs steps 2-4: parcel fetch, 16-/32-bit form
// determination, and decode-cache lookup. A fetch or decode failure
// raises the appropriate trap itself and returns ok=false; Step then
// skips straight to its common tail, which still advances PC to the
// vector the trap just staged.
func (e *Engine) fetchDecode() (*decoded, bool) {
	lo, err := e.Mem.LoadU16(e.PC)
	if err != nil {
		e.raiseTrap(CauseInstrAccessFault, e.PC)
		return nil, false
	}

	if lo&0x3 != 0x3 {
		d, err := e.cache.lookupParcel(lo)
		if err != nil {
			e.raiseTrap(CauseIllegalInstruction, uint32(lo))
			return nil, false
		}
		return d, true
	}

	hi, err := e.Mem.LoadU16(e.PC + 2)
	if err != nil {
		e.raiseTrap(CauseInstrAccessFault, e.PC)
		return nil, false
	}
	word := uint32(lo) | uint32(hi)<<16
	return e.cache.lookupWide(word), true
}

// Run steps the engine until it stops, up to maxSteps iterations (0 means
// unbounded), and returns the exit code set by Terminate (0 if the loop
// stopped for any other reason).
func (e *Engine) Run(maxSteps int) int {
	for steps := 0; ; steps++ {
		if e.Step() {
			break
		}
		if maxSteps > 0 && steps+1 >= maxSteps {
			break
		}
	}
	return e.exitCode
}
