/*
 * rv32sim - Machine timer (mtime/mtimecmp).
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

// Package timer implements the 64-bit machine timer shared by the CSR-mode
// (0x7C0-0x7C3) and MMIO-mode bindings: a free-running counter compared
// against a software-programmed deadline, latched atomically across its two
// 32-bit halves.
package timer

// Timer holds the free-running counter and comparator. The zero value is
// not usable; construct with New.
type Timer struct {
	mtime    uint64
	mtimecmp uint64

	// half-write latch: a half written while its complement is already
	// staged commits the pair atomically. Once both halves have been
	// written at least once, the pair is armed and every subsequent
	// single-half write recombines with the other half's last staged
	// value and commits immediately — this is what lets the standard
	// three-write re-arm idiom (write high=max to park, write low, write
	// the final high) land its last write instead of leaving mtimecmp
	// stuck at the parked value.
	stagedLow, stagedHigh uint32
	haveLow, haveHigh     bool
	armed                 bool
}

// New creates a timer with mtimecmp parked at its maximum value so the
// timer interrupt is not pending before firmware programs a deadline.
func New() *Timer {
	return &Timer{mtimecmp: ^uint64(0)}
}

// Tick advances mtime by one and returns whether the timer interrupt
// condition (mtime >= mtimecmp) now holds.
func (t *Timer) Tick() bool {
	t.mtime++
	return t.Pending()
}

// Pending reports whether the timer comparator condition currently holds.
func (t *Timer) Pending() bool {
	return t.mtime >= t.mtimecmp
}

// Mtime returns the current 64-bit counter value.
func (t *Timer) Mtime() uint64 {
	return t.mtime
}

// SetMtime overwrites the counter directly (used by the monitor and tests).
func (t *Timer) SetMtime(v uint64) {
	t.mtime = v
}

// Mtimecmp returns the current 64-bit comparator value.
func (t *Timer) Mtimecmp() uint64 {
	return t.mtimecmp
}

// MtimeLow/MtimeHigh/MtimecmpLow/MtimecmpHigh are the 32-bit halves exposed
// to both the CSR file and the MMIO peripheral binding.
func (t *Timer) MtimeLow() uint32  { return uint32(t.mtime) }
func (t *Timer) MtimeHigh() uint32 { return uint32(t.mtime >> 32) }

func (t *Timer) MtimecmpLow() uint32  { return uint32(t.mtimecmp) }
func (t *Timer) MtimecmpHigh() uint32 { return uint32(t.mtimecmp >> 32) }

// WriteMtimeLow/WriteMtimeHigh let a MMIO write to the counter itself take
// effect immediately; the counter has no atomicity requirement, unlike the
// comparator.
func (t *Timer) WriteMtimeLow(v uint32) {
	t.mtime = (t.mtime &^ 0xFFFFFFFF) | uint64(v)
}

func (t *Timer) WriteMtimeHigh(v uint32) {
	t.mtime = (t.mtime & 0xFFFFFFFF) | (uint64(v) << 32)
}

// WriteMtimecmpLow stages the low half of a new comparator value. If the
// high half is already staged from a prior write, the pair commits now.
func (t *Timer) WriteMtimecmpLow(v uint32) {
	t.stagedLow = v
	t.haveLow = true
	t.commitIfReady()
}

// WriteMtimecmpHigh stages the high half; see WriteMtimecmpLow.
func (t *Timer) WriteMtimecmpHigh(v uint32) {
	t.stagedHigh = v
	t.haveHigh = true
	t.commitIfReady()
}

func (t *Timer) commitIfReady() {
	if !t.armed {
		if !t.haveLow || !t.haveHigh {
			return
		}
		t.armed = true
	}
	t.mtimecmp = uint64(t.stagedHigh)<<32 | uint64(t.stagedLow)
}
