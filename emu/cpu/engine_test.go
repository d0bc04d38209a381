package cpu

import (
	"testing"

	"github.com/opencore-sim/rv32sim/emu/csr"
	"github.com/opencore-sim/rv32sim/emu/memory"
	"github.com/opencore-sim/rv32sim/emu/mmio"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Config{
		Mem:       memory.New(64 * 1024),
		MMIO:      mmio.NewRouter(),
		EnableRVC: true,
	})
}

func store32(t *testing.T, e *Engine, addr, word uint32) {
	t.Helper()
	if err := e.Mem.StoreU32(addr, word); err != nil {
		t.Fatalf("store32: %v", err)
	}
}

func TestDivByZero(t *testing.T) {
	e := newTestEngine(t)
	e.X[1] = 5
	e.X[2] = 0
	store32(t, e, 0, encR(opOp, 3, 0b100, 1, 2, 0x01)) // DIV x3, x1, x2
	e.SetEntry(0)
	e.Step()
	if e.X[3] != 0xFFFFFFFF {
		t.Fatalf("DIV by zero = %#x, want 0xFFFFFFFF", e.X[3])
	}
}

func TestDivOverflow(t *testing.T) {
	e := newTestEngine(t)
	e.X[1] = 0x80000000
	e.X[2] = 0xFFFFFFFF
	store32(t, e, 0, encR(opOp, 3, 0b100, 1, 2, 0x01)) // DIV
	e.SetEntry(0)
	e.Step()
	if e.X[3] != 0x80000000 {
		t.Fatalf("DIV overflow = %#x, want 0x80000000", e.X[3])
	}
}

func TestRemOverflow(t *testing.T) {
	e := newTestEngine(t)
	e.X[1] = 0x80000000
	e.X[2] = 0xFFFFFFFF
	store32(t, e, 0, encR(opOp, 3, 0b110, 1, 2, 0x01)) // REM
	e.SetEntry(0)
	e.Step()
	if e.X[3] != 0 {
		t.Fatalf("REM overflow = %#x, want 0", e.X[3])
	}
}

func TestLRSCRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	store32(t, e, 0x100, 0xDEADBEEF)
	e.X[1] = 0x100
	e.X[2] = 0x12345678

	// LR.W x3, (x1)
	store32(t, e, 0, (funct5(0b00010)<<27)|encR(opAmo, 3, 0b010, 1, 0, 0))
	e.SetEntry(0)
	e.Step()
	if v, _ := e.Mem.LoadU32(0x100); v != 0xDEADBEEF {
		t.Fatalf("LR.W disturbed memory: %#x", v)
	}
	if !e.reservationValid || e.reservationAddr != 0x100 {
		t.Fatalf("LR.W did not set reservation")
	}

	// SW x0, (x1): an intervening store must clear the reservation.
	store32(t, e, 4, encS(opStore, 0b010, 1, 0, 0))
	e.Step()
	if v, _ := e.Mem.LoadU32(0x100); v != 0 {
		t.Fatalf("SW did not clear memory: %#x", v)
	}
	if e.reservationValid {
		t.Fatalf("reservation survived an intervening store")
	}

	// SC.W x4, x2, (x1): must fail since the reservation was cleared.
	store32(t, e, 8, (funct5(0b00011)<<27)|encR(opAmo, 4, 0b010, 1, 2, 0))
	e.Step()
	if e.X[4] != 1 {
		t.Fatalf("SC.W result = %d, want 1 (failure)", e.X[4])
	}
	if v, _ := e.Mem.LoadU32(0x100); v != 0 {
		t.Fatalf("failed SC.W modified memory: %#x", v)
	}
}

func funct5(v uint32) uint32 { return v }

func TestTrapInvariants(t *testing.T) {
	e := newTestEngine(t)
	e.CSR.Write(csr.Mstatus, csr.MstatusMIE)
	e.SetEntry(0x400)
	e.PC = 0x400

	e.raiseTrap(CauseIllegalInstruction, 0xBADC0DE)

	mepc, _ := e.CSR.Read(csr.Mepc)
	mcause, _ := e.CSR.Read(csr.Mcause)
	mtval, _ := e.CSR.Read(csr.Mtval)
	mstatus, _ := e.CSR.Read(csr.Mstatus)

	if mepc != 0x400 {
		t.Errorf("mepc = %#x, want 0x400", mepc)
	}
	if mcause != CauseIllegalInstruction {
		t.Errorf("mcause = %#x, want %#x", mcause, CauseIllegalInstruction)
	}
	if mtval != 0xBADC0DE {
		t.Errorf("mtval = %#x, want 0xBADC0DE", mtval)
	}
	if mstatus&csr.MstatusMIE != 0 {
		t.Errorf("mstatus.MIE still set after trap entry")
	}
	if mstatus&csr.MstatusMPIE == 0 {
		t.Errorf("mstatus.MPIE did not capture pre-trap MIE")
	}
}

func TestMretRestoresPriorState(t *testing.T) {
	e := newTestEngine(t)
	e.CSR.Write(csr.Mstatus, csr.MstatusMIE)
	e.PC = 0x1000
	e.raiseTrap(CauseBreakpoint, 0)
	e.CSR.Write(csr.Mepc, 0x1004)

	e.mret()

	mstatus, _ := e.CSR.Read(csr.Mstatus)
	if mstatus&csr.MstatusMIE == 0 {
		t.Errorf("mret did not restore MIE")
	}
	if e.nextPC != 0x1004 {
		t.Errorf("mret next_pc = %#x, want 0x1004", e.nextPC)
	}
}

func TestMisalignedBranchTraps(t *testing.T) {
	e := newTestEngine(t)
	e.rvcEnabled = false
	e.alignmentMask = alignI
	e.PC = 0
	// BEQ x0, x0, +2 (misaligned for a 4-byte-aligned-only target)
	store32(t, e, 0, encB(opBranch, 0, 0, 0, 2))
	e.SetEntry(0)
	e.Step()
	mcause, _ := e.CSR.Read(csr.Mcause)
	if mcause != CauseInstrAddrMisaligned {
		t.Fatalf("mcause = %#x, want misaligned-fetch", mcause)
	}
}

// TestLoopScenario runs the seeded accumulation program from the test plan:
// li t0,0; li t1,1; li t2,100; loop: add t0,t0,t1; addi t1,t1,1; bge t2,t1,loop; ebreak
func TestLoopScenario(t *testing.T) {
	e := newTestEngine(t)
	e.rvcEnabled = false
	e.alignmentMask = alignI

	const (
		t0 = 5
		t1 = 6
		t2 = 7
	)
	prog := []uint32{
		encI(opImm, t0, 0, 0, 0),   // li t0, 0
		encI(opImm, t1, 0, 0, 1),   // li t1, 1
		encI(opImm, t2, 0, 0, 100), // li t2, 100
		encR(opOp, t0, 0, t0, t1, 0),   // loop: add t0, t0, t1
		encI(opImm, t1, 0, t1, 1),      // addi t1, t1, 1
		encB(opBranch, 0b101, t2, t1, 0xFFFFFFF8), // bge t2, t1, loop
		encSystem(opSystem, 1), // ebreak
	}
	for i, w := range prog {
		store32(t, e, uint32(i*4), w)
	}
	e.SetEntry(0)

	for i := 0; i < 10000; i++ {
		if e.PC == 6*4 { // about to execute ebreak
			break
		}
		e.Step()
	}

	if e.X[t0] != 5050 {
		t.Fatalf("t0 = %d, want 5050", e.X[t0])
	}
	if e.PC != 6*4 {
		t.Fatalf("pc = %#x, want ebreak at %#x", e.PC, 6*4)
	}
}
