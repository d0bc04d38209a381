/*
 * rv32sim - Machine timer MMIO binding.
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

package timer

import "fmt"

// MMIOWindow exposes the same Timer driving the CSR-mapped mtime/
// mtimecmp pair at the CLINT-style addresses spec.md 4.7 names:
// mtime at offset 0x0 (0x0200BFF8 absolute) and mtimecmp at offset
// 0x8 (0x02004000 absolute), each an 8-byte little-endian pair. Both
// bindings share one Timer, so a write through either address space is
// immediately visible through the other.
type MMIOWindow struct {
	t *Timer
}

// NewMMIOWindow wraps t for registration with an mmio.Router.
func NewMMIOWindow(t *Timer) *MMIOWindow { return &MMIOWindow{t: t} }

const (
	offMtimeLo    = 0x0
	offMtimeHi    = 0x4
	offMtimecmpLo = 0x8
	offMtimecmpHi = 0xC
)

func (w *MMIOWindow) ReadWord(offset uint32) (uint32, error) {
	switch offset {
	case offMtimeLo:
		return w.t.MtimeLow(), nil
	case offMtimeHi:
		return w.t.MtimeHigh(), nil
	case offMtimecmpLo:
		return w.t.MtimecmpLow(), nil
	case offMtimecmpHi:
		return w.t.MtimecmpHigh(), nil
	default:
		return 0, fmt.Errorf("timer: no register at offset %#x", offset)
	}
}

func (w *MMIOWindow) WriteWord(offset uint32, value uint32) error {
	switch offset {
	case offMtimeLo:
		w.t.WriteMtimeLow(value)
	case offMtimeHi:
		w.t.WriteMtimeHigh(value)
	case offMtimecmpLo:
		w.t.WriteMtimecmpLow(value)
	case offMtimecmpHi:
		w.t.WriteMtimecmpHigh(value)
	default:
		return fmt.Errorf("timer: no register at offset %#x", offset)
	}
	return nil
}

func (w *MMIOWindow) ReadByte(offset uint32) (uint8, error) {
	word, err := w.ReadWord(offset &^ 0x3)
	return uint8(word >> ((offset & 0x3) * 8)), err
}

func (w *MMIOWindow) WriteByte(offset uint32, value uint8) error {
	base := offset &^ 0x3
	shift := (offset & 0x3) * 8
	word, err := w.ReadWord(base)
	if err != nil {
		return err
	}
	word = (word &^ (0xFF << shift)) | uint32(value)<<shift
	return w.WriteWord(base, word)
}
