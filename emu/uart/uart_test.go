package uart

import (
	"net"
	"testing"
	"time"

	"github.com/opencore-sim/rv32sim/emu/event"
)

func TestWriteByteSetsTHRAndSchedulesEmpty(t *testing.T) {
	var events event.List
	d := New(&events)

	if err := d.WriteByte(RegData, 'A'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	lsr, _ := d.ReadByte(RegLSR)
	if lsr&lsrTHREmpty != 0 {
		t.Fatalf("THR should be busy immediately after a write")
	}

	events.Advance(transmitDelay)
	lsr, _ = d.ReadByte(RegLSR)
	if lsr&lsrTHREmpty == 0 {
		t.Fatalf("THR should be empty once the transmit delay elapses")
	}
}

func TestReceivedByteSetsDataReadyAndClearsOnRead(t *testing.T) {
	var events event.List
	d := New(&events)
	if err := d.Listen("0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer d.Close()

	addr := d.listener.Addr().String()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{'z'}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		lsr, _ := d.ReadByte(RegLSR)
		if lsr&lsrDataReady != 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("data-ready never set")
		}
		time.Sleep(time.Millisecond)
	}

	b, _ := d.ReadByte(RegData)
	if b != 'z' {
		t.Fatalf("RBR = %q, want 'z'", b)
	}
	lsr, _ := d.ReadByte(RegLSR)
	if lsr&lsrDataReady != 0 {
		t.Fatalf("data-ready should clear after reading RBR")
	}
}
