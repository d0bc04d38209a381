/*
 * rv32sim - Immediate-field extraction for full-width instruction words.
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

// immI extracts the I-type 12-bit sign-extended immediate (bits 31:20).
func immI(word uint32) uint32 {
	return signExtend(word>>20, 12)
}

// immS extracts the S-type 12-bit sign-extended immediate.
func immS(word uint32) uint32 {
	v := ((word >> 25) << 5) | ((word >> 7) & 0x1F)
	return signExtend(v, 12)
}

// immB extracts the B-type 13-bit sign-extended byte offset (bit 0 is
// always 0, not encoded).
func immB(word uint32) uint32 {
	v := ((word>>31)&1)<<12 | ((word>>7)&1)<<11 | ((word>>25)&0x3F)<<5 | ((word>>8)&0xF)<<1
	return signExtend(v, 13)
}

// immU extracts the U-type immediate, already positioned in bits 31:12.
func immU(word uint32) uint32 {
	return word & 0xFFFFF000
}

// immJ extracts the J-type 21-bit sign-extended byte offset (bit 0 is
// always 0, not encoded).
func immJ(word uint32) uint32 {
	v := ((word>>31)&1)<<20 | ((word>>12)&0xFF)<<12 | ((word>>20)&1)<<11 | ((word>>21)&0x3FF)<<1
	return signExtend(v, 21)
}
