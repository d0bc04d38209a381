package core

import (
	"testing"
	"time"

	"github.com/opencore-sim/rv32sim/emu/cpu"
	"github.com/opencore-sim/rv32sim/emu/memory"
	"github.com/opencore-sim/rv32sim/emu/mmio"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	eng := cpu.New(cpu.Config{
		Mem:       memory.New(4096),
		MMIO:      mmio.NewRouter(),
		EnableRVC: true,
	})
	return New(eng)
}

func TestStartRunsAndStopHalts(t *testing.T) {
	c := newTestCore(t)
	// An infinite loop: JAL x0, 0 (branch to self).
	word := uint32(0x6F) // opcode=JAL, rd=x0, imm=0
	if err := c.Engine.Mem.StoreU32(0, word); err != nil {
		t.Fatalf("StoreU32: %v", err)
	}
	c.Engine.SetEntry(0)

	go c.Run()
	c.SendStart()

	time.Sleep(20 * time.Millisecond)
	c.SendStop()
	time.Sleep(20 * time.Millisecond)

	c.Shutdown()
	if c.Running() {
		t.Fatalf("core still reports running after Stop")
	}
}

func TestBreakpointHaltsFreeRun(t *testing.T) {
	c := newTestCore(t)
	prog := []uint32{
		0x00000013, // nop (addi x0,x0,0)
		0x00000013,
		0x0000006F, // jal x0, 0 (spin)
	}
	for i, w := range prog {
		if err := c.Engine.Mem.StoreU32(uint32(i*4), w); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	c.Engine.SetEntry(0)
	c.SendBreakpoint(8)

	go c.Run()
	c.SendStart()

	time.Sleep(20 * time.Millisecond)
	c.Shutdown()

	if c.Engine.PC != 8 {
		t.Fatalf("pc = %#x, want breakpoint address 0x8", c.Engine.PC)
	}
}

func TestOnStepFiresOncePerRetiredInstruction(t *testing.T) {
	c := newTestCore(t)
	prog := []uint32{
		0x00000013, // nop
		0x00000013, // nop
		0x0000006F, // jal x0, 0 (spin)
	}
	for i, w := range prog {
		if err := c.Engine.Mem.StoreU32(uint32(i*4), w); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	c.Engine.SetEntry(0)
	c.SendBreakpoint(8)

	steps := 0
	c.OnStep = func() { steps++ }

	go c.Run()
	c.SendStart()
	time.Sleep(20 * time.Millisecond)
	c.Shutdown()

	if steps < 2 {
		t.Fatalf("OnStep fired %d times, want at least 2 before the breakpoint", steps)
	}
}
