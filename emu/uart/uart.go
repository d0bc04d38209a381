// Package uart implements an MMIO-mapped, TCP-backed serial port: an
// 8-byte register window over THR/RBR/LSR/IER, with a single-client TCP
// listener standing in for the teacher's telnet console. The listener
// shape (accept goroutine, per-connection handler, shutdown channel) is
// carried over 1:1 from telnet/listener.go, collapsed from a
// many-port multiplexed switchboard down to one socket.
package uart

import (
	"net"
	"sync"

	"github.com/opencore-sim/rv32sim/emu/event"
)

// Register offsets within the device's 8-byte MMIO window.
const (
	RegData   = 0 // RBR on read, THR on write.
	RegLSR    = 4 // Line status.
	RegIER    = 5 // Interrupt enable.
	RegDiv    = 6 // Divisor latch stub, never actually changes baud.
	WindowLen = 8
)

// Line status bits.
const (
	lsrDataReady  = 1 << 0
	lsrTHREmpty   = 1 << 5
	transmitDelay = 4 // Cycles modeled between a THR write and THR-empty.
)

// Device is a single-connection UART. Posted reports whether an external
// interrupt should be asserted; the MMIO router does not poll it, so
// cmd/rv32sim wires it into cpu.Config.ExternalIRQ, which the CSR file
// consults when composing mip.MEIP.
type Device struct {
	mu       sync.Mutex
	rbr      byte
	thr      byte
	lsr      uint8
	ier      uint8
	hasInput bool

	listener net.Listener
	conn     net.Conn
	shutdown chan struct{}
	wg       sync.WaitGroup

	events *event.List
}

// New creates a UART with no listener attached yet; call Listen to accept
// connections on a TCP port.
func New(events *event.List) *Device {
	return &Device{lsr: lsrTHREmpty, events: events, shutdown: make(chan struct{})}
}

// Listen starts accepting a single client connection on the given port.
func (d *Device) Listen(port string) error {
	l, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	d.listener = l
	d.wg.Add(1)
	go d.acceptLoop()
	return nil
}

// Close stops accepting connections and waits for the accept goroutine.
func (d *Device) Close() {
	if d.listener == nil {
		return
	}
	close(d.shutdown)
	d.listener.Close()
	d.wg.Wait()
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.shutdown:
			return
		default:
		}
		conn, err := d.listener.Accept()
		if err != nil {
			continue
		}
		d.attach(conn)
	}
}

func (d *Device) attach(conn net.Conn) {
	d.mu.Lock()
	if d.conn != nil {
		d.conn.Close()
	}
	d.conn = conn
	d.mu.Unlock()

	go d.readLoop(conn)
}

func (d *Device) readLoop(conn net.Conn) {
	buf := make([]byte, 1)
	for {
		n, err := conn.Read(buf)
		if n == 1 {
			d.mu.Lock()
			d.rbr = buf[0]
			d.hasInput = true
			d.lsr |= lsrDataReady
			d.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// ReadWord/WriteWord/ReadByte/WriteByte implement mmio.Peripheral.

func (d *Device) ReadByte(offset uint32) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch offset {
	case RegData:
		d.lsr &^= lsrDataReady
		d.hasInput = false
		return d.rbr, nil
	case RegLSR:
		return d.lsr, nil
	case RegIER:
		return d.ier, nil
	default:
		return 0, nil
	}
}

func (d *Device) WriteByte(offset uint32, value uint8) error {
	d.mu.Lock()
	switch offset {
	case RegData:
		d.thr = value
		d.lsr &^= lsrTHREmpty
		conn := d.conn
		d.mu.Unlock()
		if conn != nil {
			conn.Write([]byte{value})
		}
		d.events.Add(d, d.finishTransmit, transmitDelay, 0)
		return nil
	case RegIER:
		d.ier = value
	}
	d.mu.Unlock()
	return nil
}

func (d *Device) finishTransmit(int) {
	d.mu.Lock()
	d.lsr |= lsrTHREmpty
	d.mu.Unlock()
}

func (d *Device) ReadWord(offset uint32) (uint32, error) {
	b, err := d.ReadByte(offset)
	return uint32(b), err
}

func (d *Device) WriteWord(offset uint32, value uint32) error {
	return d.WriteByte(offset, uint8(value))
}

// Posted reports whether the guest should observe an external interrupt
// from received data.
func (d *Device) Posted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasInput && d.ier != 0
}
