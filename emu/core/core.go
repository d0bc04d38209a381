// Package core drives the RV32IMAC engine from its own goroutine, the
// same shape as the teacher's core.Start/core.Stop supervisor: a
// WaitGroup-tracked run loop selecting over a shutdown channel and a
// command channel, with a running bool gating whether the loop free-runs
// cpu.Engine.Step or just waits for the next command.
package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/opencore-sim/rv32sim/emu/cpu"
)

// Command identifies what a Msg asks the supervisor to do.
type Command int

const (
	Start Command = iota
	Stop
	Step
	SetBreakpoint
	ClearBreakpoint
	PostIRQ
)

// Msg is a single instruction sent to the supervisor from the monitor or
// the GDB stub, mirroring the teacher's master.Packet.
type Msg struct {
	Cmd  Command
	Addr uint32 // Breakpoint address, for SetBreakpoint/ClearBreakpoint.
}

// Core owns an Engine and the goroutine that steps it.
type Core struct {
	wg      sync.WaitGroup
	done    chan struct{}
	cmds    chan Msg
	running bool

	Engine *cpu.Engine

	breakpoints map[uint32]bool
	stopped     chan struct{} // Signalled each time the run loop transitions to stopped.

	// OnStep, if set, runs once after every retired instruction (including
	// single-steps from the monitor or the GDB stub), giving peripherals
	// with their own event.List a place to advance their clock.
	OnStep func()
}

// New wraps eng in a supervisor goroutine, not yet started.
func New(eng *cpu.Engine) *Core {
	return &Core{
		done:        make(chan struct{}),
		cmds:        make(chan Msg, 16),
		Engine:      eng,
		breakpoints: map[uint32]bool{},
		stopped:     make(chan struct{}, 1),
	}
}

// Run is the supervisor goroutine's body; call it with `go core.Run()`.
func (c *Core) Run() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		if c.running {
			stop := c.Engine.Step()
			if c.OnStep != nil {
				c.OnStep()
			}
			if stop || c.atBreakpoint() {
				c.running = false
				select {
				case c.stopped <- struct{}{}:
				default:
				}
			}
		}

		select {
		case <-c.done:
			slog.Info("core shutdown")
			return
		case msg := <-c.cmds:
			c.process(msg)
		default:
		}
	}
}

func (c *Core) atBreakpoint() bool {
	return c.breakpoints[c.Engine.PC]
}

func (c *Core) process(msg Msg) {
	switch msg.Cmd {
	case Start:
		c.running = true
	case Stop:
		if c.running {
			c.running = false
			select {
			case c.stopped <- struct{}{}:
			default:
			}
		}
	case Step:
		c.Engine.Step()
		if c.OnStep != nil {
			c.OnStep()
		}
	case SetBreakpoint:
		c.breakpoints[msg.Addr] = true
	case ClearBreakpoint:
		delete(c.breakpoints, msg.Addr)
	case PostIRQ:
		// External interrupts are modeled as CSR.Set(mip, ...) by the
		// caller before posting; PostIRQ just nudges the loop so a
		// currently-idle core notices on its next poll.
	}
}

// Shutdown signals the supervisor goroutine to exit and waits for it, with a
// one-second timeout matching the teacher's Stop().
func (c *Core) Shutdown() {
	close(c.done)
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("timed out waiting for core to finish")
	}
}

func (c *Core) SendStart()              { c.cmds <- Msg{Cmd: Start} }
func (c *Core) SendStop()               { c.cmds <- Msg{Cmd: Stop} }
func (c *Core) SendStep()               { c.cmds <- Msg{Cmd: Step} }
func (c *Core) SendBreakpoint(a uint32) { c.cmds <- Msg{Cmd: SetBreakpoint, Addr: a} }
func (c *Core) ClearBreakpoint(a uint32) {
	c.cmds <- Msg{Cmd: ClearBreakpoint, Addr: a}
}
func (c *Core) SendIRQ() { c.cmds <- Msg{Cmd: PostIRQ} }

// Running reports whether the engine is currently free-running.
func (c *Core) Running() bool { return c.running }

// Stopped receives one buffered signal each time the run loop
// transitions from running to stopped, whether by hitting a breakpoint,
// an engine-requested termination, or an external Stop. Callers such as
// the GDB stub block on it to produce a synchronous stop-reply packet.
func (c *Core) Stopped() <-chan struct{} { return c.stopped }
