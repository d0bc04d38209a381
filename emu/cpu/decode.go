/*
 * rv32sim - Instruction decode and decode cache.
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

// decoded is one decode-cache entry: the pre-split fields of a full-width
// instruction plus the expanded word itself, which handlers still need for
// immediates the split fields don't carry (LUI, branches, AMO funct5, ...).
type decoded struct {
	word   uint32
	opcode uint32
	rd     uint32
	funct3 uint32
	rs1    uint32
	rs2    uint32
	funct7 uint32
	size   uint32
}

// decode32 splits a full-width instruction word into its fixed bitfields.
// It does not validate the opcode/funct combination; handlers do that.
func decode32(word uint32, size uint32) *decoded {
	return &decoded{
		word:   word,
		opcode: word & 0x7F,
		rd:     (word >> 7) & 0x1F,
		funct3: (word >> 12) & 0x7,
		rs1:    (word >> 15) & 0x1F,
		rs2:    (word >> 20) & 0x1F,
		funct7: (word >> 25) & 0x7F,
		size:   size,
	}
}

// decodeCache holds the two disjoint content-addressed maps required by
// spec.md 4.4: a 16-bit parcel can never collide with a 32-bit instruction
// word because they live in separate containers, not a combined key space.
type decodeCache struct {
	wide    map[uint32]*decoded
	parcel  map[uint16]*decoded
}

func newDecodeCache() *decodeCache {
	return &decodeCache{
		wide:   make(map[uint32]*decoded),
		parcel: make(map[uint16]*decoded),
	}
}

// lookupWide returns the cached decode for a full 32-bit instruction word,
// decoding and inserting on miss.
func (c *decodeCache) lookupWide(word uint32) *decoded {
	if d, ok := c.wide[word]; ok {
		return d
	}
	d := decode32(word, 4)
	c.wide[word] = d
	return d
}

// lookupParcel returns the cached decode for a 16-bit compressed parcel,
// expanding, decoding, and inserting on miss.
func (c *decodeCache) lookupParcel(p uint16) (*decoded, error) {
	if d, ok := c.parcel[p]; ok {
		return d, nil
	}
	word, err := expand(p)
	if err != nil {
		return nil, err
	}
	d := decode32(word, 2)
	c.parcel[p] = d
	return d, nil
}
