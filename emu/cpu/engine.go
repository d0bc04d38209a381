/*
 * rv32sim - Architectural state and engine construction.
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

// Package cpu implements the RV32IMAC execution engine: fetch/decode/
// execute, the compressed-instruction expander, the decode cache, the
// trap and CSR subsystem, and the machine timer's instruction-tick hook.
package cpu

import (
	"fmt"

	"github.com/opencore-sim/rv32sim/emu/csr"
	"github.com/opencore-sim/rv32sim/emu/memory"
	"github.com/opencore-sim/rv32sim/emu/mmio"
	"github.com/opencore-sim/rv32sim/emu/timer"
)

// Trap causes (spec.md 4.5, 4.6, 7).
const (
	CauseInstrAddrMisaligned  uint32 = 0
	CauseInstrAccessFault     uint32 = 1
	CauseIllegalInstruction   uint32 = 2
	CauseBreakpoint           uint32 = 3
	CauseLoadAddrMisaligned   uint32 = 4
	CauseLoadAccessFault      uint32 = 5
	CauseStoreAddrMisaligned  uint32 = 6
	CauseStoreAccessFault     uint32 = 7
	CauseEnvCallFromMMode     uint32 = 11

	CauseMachineSoftwareInterrupt uint32 = 0x80000003
	CauseMachineTimerInterrupt    uint32 = 0x80000007
	CauseMachineExternalInterrupt uint32 = 0x8000000B
)

// alignment masks, per rvcEnabled.
const (
	alignC   uint32 = 0x1
	alignI   uint32 = 0x3
)

// debugSyscallBase is the a7 threshold above which an ecall is always
// routed to the host bridge regardless of mtvec (spec.md 9: "host-escape
// ebreak"/debug bridge convention).
const debugSyscallBase uint32 = 0xFFFF0000

// HostSyscall is invoked on a synchronous trap while mtvec == 0, or on any
// ecall whose a7 is >= debugSyscallBase. It returns true if it claimed
// the trap (the loop resumes from whatever next_pc the callback set);
// false sends the condition back through the normal trap path.
type HostSyscall func(e *Engine) bool

// Engine is the sole owner of RV32IMAC architectural state. It is not
// safe for concurrent use; emu/core serializes access from outside the
// execute loop.
type Engine struct {
	X      [32]uint32
	PC     uint32
	nextPC uint32

	instSize uint32

	CSR   *csr.File
	Mem   *memory.Memory
	MMIO  *mmio.Router
	Timer *timer.Timer

	reservationValid bool
	reservationAddr  uint32

	rvcEnabled    bool
	alignmentMask uint32

	terminate bool
	exitCode  int

	cache *decodeCache

	hostSyscall HostSyscall
	externalIRQ func() bool

	stopRequested bool

	instret uint64
}

// Config carries the construction-time wiring an embedder supplies.
type Config struct {
	Mem         *memory.Memory
	MMIO        *mmio.Router
	EnableRVC   bool
	HostSyscall HostSyscall
	// ExternalIRQ polls whatever peripherals the embedder wants to feed
	// into mip.MEIP (UART data-ready, block-device completion, a
	// debugger-injected interrupt). Nil means no external source is wired.
	ExternalIRQ func() bool
}

// New builds an engine with csrs and timer wired together, misa seeded for
// RV32IMA plus C if requested, and PC at zero (callers call SetEntry after
// loading an image).
func New(cfg Config) *Engine {
	e := &Engine{
		Mem:           cfg.Mem,
		MMIO:          cfg.MMIO,
		Timer:         timer.New(),
		rvcEnabled:    cfg.EnableRVC,
		cache:         newDecodeCache(),
		hostSyscall:   cfg.HostSyscall,
		externalIRQ:   cfg.ExternalIRQ,
	}
	if e.rvcEnabled {
		e.alignmentMask = alignC
	} else {
		e.alignmentMask = alignI
	}

	misa := misaBase(cfg.EnableRVC)
	e.CSR = csr.New(misa, csr.Hooks{
		ReadMtimeLow:      e.Timer.MtimeLow,
		ReadMtimeHigh:     e.Timer.MtimeHigh,
		ReadMcycle:        func() uint32 { return uint32(e.instret) },
		ReadMcycleHigh:    func() uint32 { return uint32(e.instret >> 32) },
		ReadMinstret:      func() uint32 { return uint32(e.instret) },
		ReadMinstretHigh:  func() uint32 { return uint32(e.instret >> 32) },
		ReadMtimecmpLow:   e.Timer.MtimecmpLow,
		ReadMtimecmpHigh:  e.Timer.MtimecmpHigh,
		WriteMtimecmpLow:  e.Timer.WriteMtimecmpLow,
		WriteMtimecmpHigh: e.Timer.WriteMtimecmpHigh,
		MipExternal: func() uint32 {
			var bits uint32
			if e.Timer.Pending() {
				bits |= csr.MTI
			}
			if e.externalIRQ != nil && e.externalIRQ() {
				bits |= csr.MEI
			}
			return bits
		},
	})
	return e
}

// misaBase encodes RV32 (MXL=1) with extensions I, M, A, and optionally C.
func misaBase(rvc bool) uint32 {
	const (
		mxl32 = 1 << 30
		extI  = 1 << 8
		extM  = 1 << 12
		extA  = 1 << 0
	)
	v := uint32(mxl32 | extI | extM | extA)
	if rvc {
		v |= csr.MisaC
	}
	return v
}

// SetEntry places the initial program counter, as the loader does after
// placing an image.
func (e *Engine) SetEntry(pc uint32) {
	e.PC = pc
}

// RequestStop asks the run loop to return at the next instruction
// boundary (Ctrl-C / debugger / host callback cancellation).
func (e *Engine) RequestStop() {
	e.stopRequested = true
}

// Terminate marks the engine for exit with the given code, honored at the
// next loop-iteration boundary (spec.md 4.9 step 8).
func (e *Engine) Terminate(code int) {
	e.terminate = true
	e.exitCode = code
}

// ExitCode returns the code set by Terminate.
func (e *Engine) ExitCode() int {
	return e.exitCode
}

// syncAlignment re-derives rvc_enabled/alignment_mask from the live misa
// value. Called after every CSR write that could have touched misa;
// cheap enough to call unconditionally after any SYSTEM/CSR instruction
// (spec.md invariant 3: the update must be atomic with the write).
func (e *Engine) syncAlignment() {
	misa, err := e.CSR.Read(csr.Misa)
	if err != nil {
		return
	}
	e.rvcEnabled = misa&csr.MisaC != 0
	if e.rvcEnabled {
		e.alignmentMask = alignC
	} else {
		e.alignmentMask = alignI
	}
}

func (e *Engine) setReg(n uint32, v uint32) {
	if n == 0 {
		return
	}
	e.X[n&0x1F] = v
}

func (e *Engine) reg(n uint32) uint32 {
	return e.X[n&0x1F]
}

// illegalInstructionError is a sentinel carried internally between
// handlers and the dispatch loop to signal an architectural trap rather
// than a host-level failure.
type illegalInstructionError struct {
	word uint32
}

func (err *illegalInstructionError) Error() string {
	return fmt.Sprintf("cpu: illegal instruction %#08x", err.word)
}
