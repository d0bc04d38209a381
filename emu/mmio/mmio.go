/*
 * rv32sim - MMIO window router.
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

// Package mmio dispatches loads/stores in configured address windows to
// registered peripheral handlers, falling through to RAM otherwise.
package mmio

import "fmt"

// Peripheral is the contract each MMIO-mapped device implements. Offsets
// are relative to the window's low address.
type Peripheral interface {
	ReadWord(offset uint32) (uint32, error)
	WriteWord(offset uint32, value uint32) error
	ReadByte(offset uint32) (uint8, error)
	WriteByte(offset uint32, value uint8) error
}

type window struct {
	lo, hi uint32 // inclusive low, exclusive high
	name   string
	dev    Peripheral
}

// Router owns the registered windows and dispatches accesses into them.
type Router struct {
	windows []window
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Register installs a peripheral over [lo, hi). Overlapping windows are a
// configuration error, per spec.md 4.8.
func (r *Router) Register(name string, lo, hi uint32, dev Peripheral) error {
	if hi <= lo {
		return fmt.Errorf("mmio: window %s has empty or inverted range [%#x,%#x)", name, lo, hi)
	}
	for _, w := range r.windows {
		if lo < w.hi && hi > w.lo {
			return fmt.Errorf("mmio: window %s [%#x,%#x) overlaps %s [%#x,%#x)",
				name, lo, hi, w.name, w.lo, w.hi)
		}
	}
	r.windows = append(r.windows, window{lo: lo, hi: hi, name: name, dev: dev})
	return nil
}

// Find returns the peripheral owning addr, if any, and the window-relative offset.
func (r *Router) Find(addr uint32) (Peripheral, uint32, bool) {
	for _, w := range r.windows {
		if addr >= w.lo && addr < w.hi {
			return w.dev, addr - w.lo, true
		}
	}
	return nil, 0, false
}

// InWindow reports whether the half-open byte range [addr, addr+size) is
// routed to any registered peripheral.
func (r *Router) InWindow(addr uint32, size uint32) bool {
	_, _, ok := r.Find(addr)
	if ok {
		return true
	}
	if size > 1 {
		_, _, ok = r.Find(addr + size - 1)
	}
	return ok
}
