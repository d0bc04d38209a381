// Package blockdev implements a minimal MMIO disk: a register window
// (LBA, sector count, RAM buffer address, command, status) that performs
// a bulk DMA-style transfer between a backing file and guest RAM through
// memory.Memory's bulk accessors, the same "whole-record bus transfer"
// shape as the teacher's channel-attached tape/disk devices, simplified
// from a CCW channel program down to a flat LBA/sector model.
package blockdev

import (
	"os"
	"sync"

	"github.com/opencore-sim/rv32sim/emu/memory"
)

const sectorSize = 512

// Register offsets within the device's 20-byte MMIO window.
const (
	RegLBA    = 0x00
	RegCount  = 0x04
	RegBuf    = 0x08
	RegCmd    = 0x0C
	RegStatus = 0x10
	WindowLen = 0x14
)

const (
	CmdRead  = 1
	CmdWrite = 2
)

const (
	statusDone  = 1 << 0
	statusError = 1 << 1
)

// Device is a file-backed block store addressed in 512-byte sectors.
type Device struct {
	mu sync.Mutex

	file *os.File
	mem  *memory.Memory

	lba, count, buf, status uint32
}

// New attaches a backing file and the RAM it will DMA into/out of.
func New(file *os.File, mem *memory.Memory) *Device {
	return &Device{file: file, mem: mem}
}

func (d *Device) ReadWord(offset uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch offset {
	case RegLBA:
		return d.lba, nil
	case RegCount:
		return d.count, nil
	case RegBuf:
		return d.buf, nil
	case RegStatus:
		return d.status, nil
	default:
		return 0, nil
	}
}

func (d *Device) WriteWord(offset uint32, value uint32) error {
	d.mu.Lock()
	switch offset {
	case RegLBA:
		d.lba = value
	case RegCount:
		d.count = value
	case RegBuf:
		d.buf = value
	case RegCmd:
		d.mu.Unlock()
		d.execute(value)
		return nil
	}
	d.mu.Unlock()
	return nil
}

// execute performs the bulk transfer for the given command, outside the
// register lock so the (possibly slow) file I/O doesn't block register
// reads from an unrelated CPU poll.
func (d *Device) execute(cmd uint32) {
	d.mu.Lock()
	lba, count, buf := d.lba, d.count, d.buf
	d.mu.Unlock()

	n := int64(count) * sectorSize
	off := int64(lba) * sectorSize

	var status uint32 = statusDone
	switch cmd {
	case CmdRead:
		data := make([]byte, n)
		if _, err := d.file.ReadAt(data, off); err != nil {
			status = statusError
		} else if err := d.mem.StoreBytes(buf, data); err != nil {
			status = statusError
		}
	case CmdWrite:
		data, err := d.mem.LoadBytes(buf, uint32(n))
		if err != nil {
			status = statusError
		} else if _, err := d.file.WriteAt(data, off); err != nil {
			status = statusError
		}
	default:
		status = statusError
	}

	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}

func (d *Device) ReadByte(offset uint32) (uint8, error) {
	word, err := d.ReadWord(offset &^ 0x3)
	return uint8(word >> ((offset & 0x3) * 8)), err
}

func (d *Device) WriteByte(offset uint32, value uint8) error {
	base := offset &^ 0x3
	shift := (offset & 0x3) * 8
	word, _ := d.ReadWord(base)
	word = (word &^ (0xFF << shift)) | uint32(value)<<shift
	return d.WriteWord(base, word)
}
