/*
 * rv32sim - Unified load/store path across MMIO windows and RAM.
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

import "fmt"

// loadWidth reads width bytes (1, 2, or 4) at addr, routing through the
// MMIO router first and falling through to RAM (spec.md 4.8). A
// non-word-aligned or narrower MMIO access fans out to the peripheral's
// byte accessor, per the MMIO peripheral contract in spec.md 6.
func (e *Engine) loadWidth(addr uint32, width uint32) (uint32, error) {
	if dev, off, ok := e.MMIO.Find(addr); ok {
		if width == 4 && off%4 == 0 {
			return dev.ReadWord(off)
		}
		var val uint32
		for i := uint32(0); i < width; i++ {
			b, err := dev.ReadByte(off + i)
			if err != nil {
				return 0, err
			}
			val |= uint32(b) << (8 * i)
		}
		return val, nil
	}
	switch width {
	case 1:
		v, err := e.Mem.LoadU8(addr)
		return uint32(v), err
	case 2:
		v, err := e.Mem.LoadU16(addr)
		return uint32(v), err
	case 4:
		return e.Mem.LoadU32(addr)
	}
	return 0, fmt.Errorf("cpu: unsupported load width %d", width)
}

// storeWidth writes width bytes (1, 2, or 4) of val at addr, through the
// same MMIO-then-RAM path as loadWidth.
func (e *Engine) storeWidth(addr uint32, width uint32, val uint32) error {
	if dev, off, ok := e.MMIO.Find(addr); ok {
		if width == 4 && off%4 == 0 {
			return dev.WriteWord(off, val)
		}
		for i := uint32(0); i < width; i++ {
			if err := dev.WriteByte(off+i, byte(val>>(8*i))); err != nil {
				return err
			}
		}
		return nil
	}
	switch width {
	case 1:
		return e.Mem.StoreU8(addr, uint8(val))
	case 2:
		return e.Mem.StoreU16(addr, uint16(val))
	case 4:
		return e.Mem.StoreU32(addr, val)
	}
	return fmt.Errorf("cpu: unsupported store width %d", width)
}
