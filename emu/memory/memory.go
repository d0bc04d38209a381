/*
 * rv32sim - Flat RAM for the guest address space.
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

// Package memory implements the flat byte-addressable guest RAM.
package memory

import "fmt"

// tailPad is extra scratch space appended past the configured size so a
// word fetch that starts on the last valid byte never overreads the
// backing slice (spec.md 4.1).
const tailPad = 4

// OutOfBounds is returned for any access whose first byte lies outside
// [0, size) or that extends past the tail pad. An access that starts
// inside RAM and runs into the tail pad is not rejected.
type OutOfBounds struct {
	Addr uint32
	Size uint32
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("memory: address %#08x out of bounds (size %#x)", e.Addr, e.Size)
}

// Memory is the flat RAM backing the guest address space.
type Memory struct {
	buf  []byte
	size uint32
}

// New allocates RAM of the given size in bytes.
func New(size uint32) *Memory {
	return &Memory{
		buf:  make([]byte, uint64(size)+tailPad),
		size: size,
	}
}

// Size returns the configured RAM size in bytes (not counting the tail pad).
func (m *Memory) Size() uint32 {
	return m.size
}

func (m *Memory) check(addr uint32, width uint32) error {
	if addr >= m.size || uint64(addr)+uint64(width) > uint64(m.size)+tailPad {
		return &OutOfBounds{Addr: addr, Size: m.size}
	}
	return nil
}

// LoadU8 reads an unsigned byte.
func (m *Memory) LoadU8(addr uint32) (uint8, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.buf[addr], nil
}

// LoadI8 reads a sign-extended byte, returned widened to uint32 by the caller.
func (m *Memory) LoadI8(addr uint32) (int8, error) {
	v, err := m.LoadU8(addr)
	return int8(v), err
}

// LoadU16 reads an unaligned little-endian halfword.
func (m *Memory) LoadU16(addr uint32) (uint16, error) {
	if err := m.check(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.buf[addr]) | uint16(m.buf[addr+1])<<8, nil
}

// LoadI16 reads a sign-extended halfword.
func (m *Memory) LoadI16(addr uint32) (int16, error) {
	v, err := m.LoadU16(addr)
	return int16(v), err
}

// LoadU32 reads an unaligned little-endian word. Unaligned accesses are
// supported without trapping, a deliberate deviation from strict RV32
// documented in spec.md 9.
func (m *Memory) LoadU32(addr uint32) (uint32, error) {
	if err := m.check(addr, 4); err != nil {
		return 0, err
	}
	return uint32(m.buf[addr]) | uint32(m.buf[addr+1])<<8 |
		uint32(m.buf[addr+2])<<16 | uint32(m.buf[addr+3])<<24, nil
}

// StoreU8 writes a byte.
func (m *Memory) StoreU8(addr uint32, v uint8) error {
	if err := m.check(addr, 1); err != nil {
		return err
	}
	m.buf[addr] = v
	return nil
}

// StoreU16 writes an unaligned little-endian halfword.
func (m *Memory) StoreU16(addr uint32, v uint16) error {
	if err := m.check(addr, 2); err != nil {
		return err
	}
	m.buf[addr] = byte(v)
	m.buf[addr+1] = byte(v >> 8)
	return nil
}

// StoreU32 writes an unaligned little-endian word.
func (m *Memory) StoreU32(addr uint32, v uint32) error {
	if err := m.check(addr, 4); err != nil {
		return err
	}
	m.buf[addr] = byte(v)
	m.buf[addr+1] = byte(v >> 8)
	m.buf[addr+2] = byte(v >> 16)
	m.buf[addr+3] = byte(v >> 24)
	return nil
}

// StoreBytes bulk-copies an image into RAM, for initial loading and for
// peripheral DMA-style transfers.
func (m *Memory) StoreBytes(addr uint32, data []byte) error {
	if err := m.check(addr, uint32(len(data))); err != nil {
		return err
	}
	copy(m.buf[addr:], data)
	return nil
}

// LoadBytes bulk-reads a range of RAM, for peripheral DMA-style transfers.
func (m *Memory) LoadBytes(addr uint32, n uint32) ([]byte, error) {
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.buf[addr:uint64(addr)+uint64(n)])
	return out, nil
}
