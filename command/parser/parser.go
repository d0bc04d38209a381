// Package parser implements the interactive monitor's command line:
// a minimum-unique-prefix dispatch table exactly like the teacher's
// command/parser, with commands suited to a CPU debugger (examine,
// deposit, step, continue, break, regs, csr, quit) instead of IBM 370
// device attach/detach/set commands.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/opencore-sim/rv32sim/emu/core"
	"github.com/opencore-sim/rv32sim/emu/csr"
)

type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, *core.Core) (bool, error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "examine", min: 2, process: examine},
	{name: "deposit", min: 2, process: deposit},
	{name: "step", min: 2, process: step},
	{name: "continue", min: 1, process: cont},
	{name: "stop", min: 3, process: stop},
	{name: "break", min: 2, process: setBreak},
	{name: "unbreak", min: 3, process: clearBreak},
	{name: "regs", min: 2, process: regs},
	{name: "csr", min: 3, process: csrShow},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand parses and runs one line of monitor input, returning
// true if the monitor should exit.
func ProcessCommand(line string, c *core.Core) (bool, error) {
	cl := cmdLine{line: line}
	name := cl.getWord()

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, errors.New("command not found: " + name)
	case 1:
		return match[0].process(&cl, c)
	default:
		return false, errors.New("ambiguous command: " + name)
	}
}

// CompleteCmd is wired into liner.SetCompleter.
func CompleteCmd(line string) []string {
	cl := cmdLine{line: line}
	name := cl.getWord()
	if !cl.isEOL() {
		return nil
	}
	var out []string
	for _, m := range matchList(name) {
		out = append(out, m.name+" ")
	}
	return out
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			out = append(out, c)
		}
	}
	return out
}

func matchCommand(c cmd, name string) bool {
	if len(name) > len(c.name) {
		return false
	}
	if len(name) < c.min {
		return false
	}
	return c.name[:len(name)] == name
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return strings.ToLower(l.line[start:l.pos])
}

func (l *cmdLine) getHex32() (uint32, error) {
	w := l.getWord()
	w = strings.TrimPrefix(w, "0x")
	v, err := strconv.ParseUint(w, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("expected a hex value, got %q", w)
	}
	return uint32(v), nil
}

func examine(l *cmdLine, c *core.Core) (bool, error) {
	addr, err := l.getHex32()
	if err != nil {
		return false, err
	}
	v, err := c.Engine.Mem.LoadU32(addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("%08x: %08x\n", addr, v)
	return false, nil
}

func deposit(l *cmdLine, c *core.Core) (bool, error) {
	addr, err := l.getHex32()
	if err != nil {
		return false, err
	}
	value, err := l.getHex32()
	if err != nil {
		return false, err
	}
	return false, c.Engine.Mem.StoreU32(addr, value)
}

func step(l *cmdLine, c *core.Core) (bool, error) {
	l.skipSpace()
	n := 1
	if !l.isEOL() {
		w := l.getWord()
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, fmt.Errorf("step count must be a number: %q", w)
		}
		n = v
	}
	for i := 0; i < n; i++ {
		c.SendStep()
	}
	return false, nil
}

func cont(_ *cmdLine, c *core.Core) (bool, error) {
	c.SendStart()
	return false, nil
}

func stop(_ *cmdLine, c *core.Core) (bool, error) {
	c.SendStop()
	return false, nil
}

func setBreak(l *cmdLine, c *core.Core) (bool, error) {
	addr, err := l.getHex32()
	if err != nil {
		return false, err
	}
	c.SendBreakpoint(addr)
	return false, nil
}

func clearBreak(l *cmdLine, c *core.Core) (bool, error) {
	addr, err := l.getHex32()
	if err != nil {
		return false, err
	}
	c.ClearBreakpoint(addr)
	return false, nil
}

func regs(_ *cmdLine, c *core.Core) (bool, error) {
	for i := 0; i < 32; i++ {
		fmt.Printf("x%-2d=%08x ", i, c.Engine.X[i])
		if i%4 == 3 {
			fmt.Println()
		}
	}
	fmt.Printf("pc =%08x\n", c.Engine.PC)
	return false, nil
}

var csrNames = map[string]uint16{
	"mstatus":  csr.Mstatus,
	"misa":     csr.Misa,
	"mie":      csr.Mie,
	"mtvec":    csr.Mtvec,
	"mscratch": csr.Mscratch,
	"mepc":     csr.Mepc,
	"mcause":   csr.Mcause,
	"mtval":    csr.Mtval,
	"mip":      csr.Mip,
}

func csrShow(l *cmdLine, c *core.Core) (bool, error) {
	name := l.getWord()
	addr, ok := csrNames[name]
	if !ok {
		return false, errors.New("unknown csr: " + name)
	}
	v, err := c.Engine.CSR.Read(addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("%s = %08x\n", name, v)
	return false, nil
}

func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	return true, nil
}
