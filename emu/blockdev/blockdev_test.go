package blockdev

import (
	"bytes"
	"os"
	"testing"

	"github.com/opencore-sim/rv32sim/emu/memory"
)

func tempBackingFile(t *testing.T, sectors int) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "disk-*.img")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if err := f.Truncate(int64(sectors) * sectorSize); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	return f
}

func TestReadSectorDMAsIntoRAM(t *testing.T) {
	f := tempBackingFile(t, 2)
	sector1 := bytes.Repeat([]byte{0xAB}, sectorSize)
	if _, err := f.WriteAt(sector1, sectorSize); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	mem := memory.New(64 * 1024)
	d := New(f, mem)

	d.WriteWord(RegLBA, 1)
	d.WriteWord(RegCount, 1)
	d.WriteWord(RegBuf, 0x1000)
	d.WriteWord(RegCmd, CmdRead)

	status, _ := d.ReadWord(RegStatus)
	if status != statusDone {
		t.Fatalf("status = %#x, want done", status)
	}

	got, err := mem.LoadBytes(0x1000, sectorSize)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if !bytes.Equal(got, sector1) {
		t.Fatalf("RAM contents did not match the backing sector")
	}
}

func TestWriteSectorPersistsToFile(t *testing.T) {
	f := tempBackingFile(t, 1)
	mem := memory.New(64 * 1024)
	payload := bytes.Repeat([]byte{0xCD}, sectorSize)
	if err := mem.StoreBytes(0x2000, payload); err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}

	d := New(f, mem)
	d.WriteWord(RegLBA, 0)
	d.WriteWord(RegCount, 1)
	d.WriteWord(RegBuf, 0x2000)
	d.WriteWord(RegCmd, CmdWrite)

	status, _ := d.ReadWord(RegStatus)
	if status != statusDone {
		t.Fatalf("status = %#x, want done", status)
	}

	onDisk := make([]byte, sectorSize)
	if _, err := f.ReadAt(onDisk, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(onDisk, payload) {
		t.Fatalf("file contents did not match RAM payload")
	}
}

func TestByteAccessorsFanOutFromWord(t *testing.T) {
	mem := memory.New(4096)
	f := tempBackingFile(t, 1)
	d := New(f, mem)

	if err := d.WriteWord(RegLBA, 0x11223344); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	b, err := d.ReadByte(RegLBA + 1)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0x33 {
		t.Fatalf("byte 1 of LBA = %#x, want 0x33", b)
	}
}
