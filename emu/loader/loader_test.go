package loader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/opencore-sim/rv32sim/emu/memory"
)

func TestLoadFlatCopiesVerbatim(t *testing.T) {
	mem := memory.New(4096)
	data := []byte{1, 2, 3, 4, 5}
	if err := LoadFlat(mem, 0x100, data); err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	got, err := mem.LoadBytes(0x100, uint32(len(data)))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("loaded %v, want %v", got, data)
	}
}

// buildMinimalELF32 hand-assembles a single-PT_LOAD, no-section-header
// ELF32 RISC-V executable: just enough for debug/elf to parse the
// program header table and segment contents.
func buildMinimalELF32(t *testing.T, entry uint32, loadAddr uint32, text []byte, bssLen uint32) []byte {
	t.Helper()
	const ehsize = 52
	const phentsize = 32
	phoff := uint32(ehsize)
	dataOff := phoff + phentsize

	var buf bytes.Buffer
	ident := []byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	buf.Write(ident)
	binary.Write(&buf, binary.LittleEndian, uint16(2))   // e_type = ET_EXEC
	binary.Write(&buf, binary.LittleEndian, uint16(243)) // e_machine = EM_RISCV
	binary.Write(&buf, binary.LittleEndian, uint32(1))   // e_version
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, phoff)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	binary.Write(&buf, binary.LittleEndian, uint32(1)) // p_type = PT_LOAD
	binary.Write(&buf, binary.LittleEndian, dataOff)   // p_offset
	binary.Write(&buf, binary.LittleEndian, loadAddr)  // p_vaddr
	binary.Write(&buf, binary.LittleEndian, loadAddr)  // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint32(len(text)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(text))+bssLen)
	binary.Write(&buf, binary.LittleEndian, uint32(5)) // p_flags = R+X
	binary.Write(&buf, binary.LittleEndian, uint32(4)) // p_align

	buf.Write(text)
	return buf.Bytes()
}

func TestLoadELFPlacesSegmentAndZerosBSS(t *testing.T) {
	text := []byte{0x13, 0x00, 0x00, 0x00} // nop
	raw := buildMinimalELF32(t, 0x1000, 0x1000, text, 4)

	mem := memory.New(64 * 1024)
	img, err := LoadELF(mem, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadELF: %v", err)
	}
	if img.Entry != 0x1000 {
		t.Errorf("entry = %#x, want 0x1000", img.Entry)
	}
	if img.ToHost != 0 {
		t.Errorf("tohost = %#x, want 0 (no symbol table present)", img.ToHost)
	}

	got, err := mem.LoadBytes(0x1000, 4)
	if err != nil {
		t.Fatalf("LoadBytes text: %v", err)
	}
	if !bytes.Equal(got, text) {
		t.Errorf("text segment mismatch: %v", got)
	}

	bss, err := mem.LoadBytes(0x1004, 4)
	if err != nil {
		t.Fatalf("LoadBytes bss: %v", err)
	}
	for _, b := range bss {
		if b != 0 {
			t.Fatalf("bss not zero-filled: %v", bss)
		}
	}
}

func TestLoadELFRejectsWrongMachine(t *testing.T) {
	raw := buildMinimalELF32(t, 0, 0, nil, 0)
	raw[18] = 0x03 // e_machine low byte -> EM_386, not EM_RISCV
	mem := memory.New(4096)
	if _, err := LoadELF(mem, bytes.NewReader(raw)); err == nil {
		t.Fatalf("expected an error for a non-RISC-V machine type")
	}
}
