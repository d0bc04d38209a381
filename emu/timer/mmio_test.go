package timer

import "testing"

func TestMMIOWindowReadsMatchTimerHalves(t *testing.T) {
	tm := New()
	tm.SetMtime(0x1122334455667788)
	w := NewMMIOWindow(tm)

	lo, err := w.ReadWord(offMtimeLo)
	if err != nil || lo != 0x55667788 {
		t.Fatalf("ReadWord(mtime lo) = %#x, %v", lo, err)
	}
	hi, err := w.ReadWord(offMtimeHi)
	if err != nil || hi != 0x11223344 {
		t.Fatalf("ReadWord(mtime hi) = %#x, %v", hi, err)
	}
}

func TestMMIOWindowWriteMtimecmpCommitsBothHalves(t *testing.T) {
	tm := New()
	w := NewMMIOWindow(tm)

	if err := w.WriteWord(offMtimecmpLo, 0xCAFEBABE); err != nil {
		t.Fatalf("WriteWord(mtimecmp lo): %v", err)
	}
	tm.SetMtime(^uint64(0)) // comparator not yet committed: still pending
	if !tm.Pending() {
		t.Fatalf("expected comparator to still read as maxed out before high half lands")
	}

	if err := w.WriteWord(offMtimecmpHi, 0x00000000); err != nil {
		t.Fatalf("WriteWord(mtimecmp hi): %v", err)
	}
	if tm.Mtimecmp() != 0xCAFEBABE {
		t.Fatalf("Mtimecmp() = %#x, want 0xCAFEBABE", tm.Mtimecmp())
	}
}

func TestMMIOWindowByteAccessorsFanOutFromWord(t *testing.T) {
	tm := New()
	w := NewMMIOWindow(tm)

	if err := w.WriteWord(offMtimeLo, 0x11223344); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	b, err := w.ReadByte(offMtimeLo)
	if err != nil || b != 0x44 {
		t.Fatalf("ReadByte(mtime lo) = %#x, %v, want 0x44", b, err)
	}
	b, err = w.ReadByte(offMtimeLo + 3)
	if err != nil || b != 0x11 {
		t.Fatalf("ReadByte(mtime lo+3) = %#x, %v, want 0x11", b, err)
	}

	if err := w.WriteByte(offMtimeLo, 0xFF); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	got, _ := w.ReadWord(offMtimeLo)
	if got != 0x112233FF {
		t.Fatalf("ReadWord after WriteByte = %#x, want 0x112233ff", got)
	}
}

func TestMMIOWindowRejectsUnknownOffset(t *testing.T) {
	w := NewMMIOWindow(New())
	if _, err := w.ReadWord(0x10); err == nil {
		t.Fatalf("expected an error for an unmapped offset")
	}
}
