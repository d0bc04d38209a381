/*
 * rv32sim - Machine-mode CSR file.
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

// Package csr implements the named 12-bit control-and-status register file
// used by machine-mode RV32: per-address write masks, read-only
// enforcement, and the side-effecting registers (mtime, mcycle, mip,
// mtimecmp, misa).
package csr

import "fmt"

// Addresses of the CSRs this engine recognizes (spec.md 4.2).
const (
	Mstatus   uint16 = 0x300
	Misa      uint16 = 0x301
	Mie       uint16 = 0x304
	Mtvec     uint16 = 0x305
	Mscratch  uint16 = 0x340
	Mepc      uint16 = 0x341
	Mcause    uint16 = 0x342
	Mtval     uint16 = 0x343
	Mip       uint16 = 0x344
	Mcycle    uint16 = 0xB00
	Minstret  uint16 = 0xB02
	Mcycleh   uint16 = 0xB80
	Minstreth uint16 = 0xB82

	// Custom CSR-mode timer bindings (spec.md 4.7).
	MtimeLo    uint16 = 0x7C0
	MtimeHi    uint16 = 0x7C1
	MtimecmpLo uint16 = 0x7C2
	MtimecmpHi uint16 = 0x7C3
)

// mstatus / mie / mip bit positions.
const (
	MstatusMIE  uint32 = 1 << 3
	MstatusMPIE uint32 = 1 << 7

	MSI uint32 = 1 << 3  // machine software interrupt
	MTI uint32 = 1 << 7  // machine timer interrupt
	MEI uint32 = 1 << 11 // machine external interrupt

	MisaC uint32 = 1 << 2
)

// IllegalCSR is returned when accessing an address this file does not
// recognize.
type IllegalCSR struct {
	Addr uint16
}

func (e *IllegalCSR) Error() string {
	return fmt.Sprintf("csr: illegal CSR address %#03x", e.Addr)
}

// entry holds one CSR's stored value, its write mask, and optional hooks.
// readHook, if set, supersedes the stored value entirely (used for
// mtime/mcycle/mip, whose true value lives outside this struct). writeHook,
// if set, is invoked with the already-masked candidate value and may
// perform a side effect (latching mtimecmp) and returns the
// value this entry should remember.
type entry struct {
	value     uint32
	mask      uint32
	readHook  func() uint32
	writeHook func(candidate uint32) uint32
}

func (e *entry) read() uint32 {
	if e.readHook != nil {
		return e.readHook()
	}
	return e.value
}

// isReadOnly reports whether every bit of this register is masked off,
// meaning no CSR instruction can ever change it.
func (e *entry) isReadOnly() bool {
	return e.mask == 0
}

// File is the machine-mode CSR register file.
type File struct {
	regs map[uint16]*entry
}

// Hooks wires the CSR file to the engine components that own
// side-effecting state (the machine timer and the pending-interrupt
// composition).
type Hooks struct {
	ReadMtimeLow     func() uint32
	ReadMtimeHigh    func() uint32
	ReadMcycle       func() uint32
	ReadMcycleHigh   func() uint32
	ReadMinstret     func() uint32
	ReadMinstretHigh func() uint32
	WriteMtimecmpLow  func(uint32)
	WriteMtimecmpHigh func(uint32)
	ReadMtimecmpLow   func() uint32
	ReadMtimecmpHigh  func() uint32
	// MipExternal returns hardware-driven mip bits (MTI from the machine
	// timer, MEI from the external interrupt source) to be composed with
	// the software-writable bits stored locally.
	MipExternal func() uint32
}

// New builds the CSR file with the given initial misa value (RV32 + I + M +
// A, optionally C) and the component hooks.
func New(misaInit uint32, h Hooks) *File {
	f := &File{regs: map[uint16]*entry{}}

	f.regs[Mstatus] = &entry{mask: MstatusMIE | MstatusMPIE}
	f.regs[Misa] = &entry{value: misaInit, mask: MisaC}
	f.regs[Mie] = &entry{mask: MSI | MTI | MEI}
	f.regs[Mtvec] = &entry{mask: 0xFFFFFFFF}
	f.regs[Mscratch] = &entry{mask: 0xFFFFFFFF}
	f.regs[Mepc] = &entry{mask: 0xFFFFFFFF}
	f.regs[Mcause] = &entry{mask: 0xFFFFFFFF}
	f.regs[Mtval] = &entry{mask: 0xFFFFFFFF}

	// mip: MSI is software settable (tests poke it directly); MTI and MEI
	// are hardware-driven (timer and external peripherals respectively)
	// and composed in on every read.
	f.regs[Mip] = &entry{
		mask: MSI,
		readHook: func() uint32 {
			ext := uint32(0)
			if h.MipExternal != nil {
				ext = h.MipExternal()
			}
			return (f.regs[Mip].value &^ (MTI | MEI)) | (ext & (MTI | MEI))
		},
	}

	f.regs[Mcycle] = &entry{readHook: orNop(h.ReadMcycle)}
	f.regs[Mcycleh] = &entry{readHook: orNop(h.ReadMcycleHigh)}
	f.regs[Minstret] = &entry{readHook: orNop(h.ReadMinstret)}
	f.regs[Minstreth] = &entry{readHook: orNop(h.ReadMinstretHigh)}

	f.regs[MtimeLo] = &entry{readHook: orNop(h.ReadMtimeLow)}
	f.regs[MtimeHi] = &entry{readHook: orNop(h.ReadMtimeHigh)}
	f.regs[MtimecmpLo] = &entry{
		mask:     0xFFFFFFFF,
		readHook: orNop(h.ReadMtimecmpLow),
		writeHook: func(candidate uint32) uint32 {
			if h.WriteMtimecmpLow != nil {
				h.WriteMtimecmpLow(candidate)
			}
			return candidate
		},
	}
	f.regs[MtimecmpHi] = &entry{
		mask:     0xFFFFFFFF,
		readHook: orNop(h.ReadMtimecmpHigh),
		writeHook: func(candidate uint32) uint32 {
			if h.WriteMtimecmpHigh != nil {
				h.WriteMtimecmpHigh(candidate)
			}
			return candidate
		},
	}

	return f
}

func orNop(fn func() uint32) func() uint32 {
	if fn == nil {
		return func() uint32 { return 0 }
	}
	return fn
}

func (f *File) lookup(addr uint16) (*entry, error) {
	e, ok := f.regs[addr]
	if !ok {
		return nil, &IllegalCSR{Addr: addr}
	}
	return e, nil
}

// Read returns the live value of addr.
func (f *File) Read(addr uint16) (uint32, error) {
	e, err := f.lookup(addr)
	if err != nil {
		return 0, err
	}
	return e.read(), nil
}

// IsReadOnly reports whether addr is fully read-only (every bit masked
// off). CSRRS/CSRRC/CSRRSI/CSRRCI with a nonzero operand against such a
// register trap illegal-instruction (spec.md 4.2); CSRRW/CSRRWI do not,
// since the masked write is simply a no-op.
func (f *File) IsReadOnly(addr uint16) (bool, error) {
	e, err := f.lookup(addr)
	if err != nil {
		return false, err
	}
	return e.isReadOnly(), nil
}

// Write stores value into addr, masking to the writable bits and
// preserving the rest, and returns the value observed *before* the write
// (the three CSR operations all return the prior value). The masked
// portion beyond the write mask is silently preserved per spec.md 4.2.
func (f *File) Write(addr uint16, value uint32) (uint32, error) {
	e, err := f.lookup(addr)
	if err != nil {
		return 0, err
	}
	old := e.read()
	candidate := (old &^ e.mask) | (value & e.mask)
	if e.writeHook != nil {
		e.value = e.writeHook(candidate)
	} else {
		e.value = candidate
	}
	return old, nil
}

// Set performs a CSRRS-style read-modify-write: bits set in mask (already
// limited to the writable mask by Write) are OR'd in.
func (f *File) Set(addr uint16, setBits uint32) (uint32, error) {
	old, err := f.Read(addr)
	if err != nil {
		return 0, err
	}
	if setBits == 0 {
		return old, nil
	}
	_, err = f.Write(addr, old|setBits)
	return old, err
}

// Clear performs a CSRRC-style read-modify-write: bits set in mask are
// cleared.
func (f *File) Clear(addr uint16, clearBits uint32) (uint32, error) {
	old, err := f.Read(addr)
	if err != nil {
		return 0, err
	}
	if clearBits == 0 {
		return old, nil
	}
	_, err = f.Write(addr, old&^clearBits)
	return old, err
}
