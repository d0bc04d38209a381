/*
 * rv32sim - Opcode dispatch table.
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

// handlerFunc is the signature every opcode handler implements. Dispatch
// on the 7-bit opcode is a fixed table of function pointers rather than
// any form of polymorphism (spec.md 9) — the opcode already discriminates
// the instruction family.
type handlerFunc func(e *Engine, d *decoded)

var opcodeTable [128]handlerFunc

func init() {
	opcodeTable[opOp] = opOpHandler
	opcodeTable[opImm] = opImmHandler
	opcodeTable[opLoad] = opLoadHandler
	opcodeTable[opStore] = opStoreHandler
	opcodeTable[opBranch] = opBranchHandler
	opcodeTable[opJal] = opJalHandler
	opcodeTable[opJalr] = opJalrHandler
	opcodeTable[opLui] = opLuiHandler
	opcodeTable[opAuipc] = opAuipcHandler
	opcodeTable[opAmo] = opAmoHandler
	opcodeTable[opSystem] = opSystemHandler
	opcodeTable[opMiscMem] = opMiscMemHandler
}

func (e *Engine) dispatch(d *decoded) {
	h := opcodeTable[d.opcode&0x7F]
	if h == nil {
		e.raiseTrap(CauseIllegalInstruction, d.word)
		return
	}
	h(e, d)
}
