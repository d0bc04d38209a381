// Package hostsyscall implements the Newlib-style ecall bridge installed
// as the engine's HostSyscall callback when mtvec == 0 (spec.md 4.6, 6):
// a handful of riscv-tests/Newlib syscall numbers in a7, with arguments
// in a0..a6 and the result returned in a0, modeled on the teacher's
// single-dispatch-point SVC handler (emu/cpu/cpu_system.go's opSVC),
// generalized from a fixed PSW-save convention to the a7/a0..a6 ABI.
package hostsyscall

import (
	"io"

	"github.com/opencore-sim/rv32sim/emu/cpu"
)

const (
	sysExit  = 93
	sysRead  = 63
	sysWrite = 64
	sysBrk1  = 214
	sysBrk2  = 45
)

const (
	fdStdin  = 0
	fdStdout = 1
	fdStderr = 2
)

// Bridge answers the subset of Newlib syscalls riscv-tests and similar
// bare-metal harnesses rely on. Stdout/Stderr are whatever writer the
// caller wires in (normally os.Stdout/os.Stderr); Stdin likewise.
type Bridge struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	brk uint32 // Simulated program break, returned/advanced by brk.
}

// Handle is installed as cpu.Config.HostSyscall. It always resumes
// execution (the fetch loop has already staged next_pc at the
// instruction following ecall); exit terminates the engine instead of
// vectoring into guest code.
func (b *Bridge) Handle(e *cpu.Engine) bool {
	switch e.X[17] { // a7
	case sysExit:
		e.Terminate(int(int32(e.X[10]))) // a0
	case sysWrite:
		b.write(e)
	case sysRead:
		b.read(e)
	case sysBrk1, sysBrk2:
		b.brkSyscall(e)
	default:
		e.X[10] = 0xFFFFFFFF // -1: ENOSYS equivalent, but keep running.
	}
	return true
}

func (b *Bridge) write(e *cpu.Engine) {
	fd, addr, length := e.X[10], e.X[11], e.X[12]
	var w io.Writer
	switch fd {
	case fdStdout:
		w = b.Stdout
	case fdStderr:
		w = b.Stderr
	default:
		e.X[10] = 0xFFFFFFFF
		return
	}
	if w == nil {
		e.X[10] = length
		return
	}
	data, err := e.Mem.LoadBytes(addr, length)
	if err != nil {
		e.X[10] = 0xFFFFFFFF
		return
	}
	n, err := w.Write(data)
	if err != nil {
		e.X[10] = 0xFFFFFFFF
		return
	}
	e.X[10] = uint32(n)
}

func (b *Bridge) read(e *cpu.Engine) {
	fd, addr, length := e.X[10], e.X[11], e.X[12]
	if fd != fdStdin || b.Stdin == nil {
		e.X[10] = 0
		return
	}
	buf := make([]byte, length)
	n, err := b.Stdin.Read(buf)
	if err != nil && n == 0 {
		e.X[10] = 0
		return
	}
	if werr := e.Mem.StoreBytes(addr, buf[:n]); werr != nil {
		e.X[10] = 0xFFFFFFFF
		return
	}
	e.X[10] = uint32(n)
}

// brkSyscall tracks a simulated break address: a0 == 0 queries the
// current break, a nonzero a0 requests a new one and the bridge always
// grants it (there is no backing allocator to exhaust).
func (b *Bridge) brkSyscall(e *cpu.Engine) {
	if e.X[10] != 0 {
		b.brk = e.X[10]
	}
	e.X[10] = b.brk
}
